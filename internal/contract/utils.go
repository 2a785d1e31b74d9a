package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	IncreaseColor = color.New(color.FgGreen)  // IncreaseColor marks positive evolution.
	DecreaseColor = color.New(color.FgRed)    // DecreaseColor marks negative evolution.
	NeutralColor  = color.New(color.FgYellow) // NeutralColor marks unchanged values.
	HeaderColor   = color.New(color.FgCyan, color.Bold)
)

// ColorizeChange colors a formatted change value by its sign.
func ColorizeChange(formatted string, change float64) string {
	switch {
	case change > 0:
		return IncreaseColor.Sprint(formatted)
	case change < 0:
		return DecreaseColor.Sprint(formatted)
	default:
		return NeutralColor.Sprint(formatted)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().Error("fatal "+msg, "error", err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger().Warn(msg, "error", err)
}

// TruncateLabel truncates a row label to a maximum width with ellipsis suffix.
// Requires maxWidth > 3 to leave room for the "..." and at least one character.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
