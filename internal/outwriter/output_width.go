package outwriter

import (
	"os"

	"github.com/huangsam/datacompare/internal/contract"
	"golang.org/x/term"
)

// Label column bounds for the comparison table.
const (
	minLabelWidth = 15
	maxLabelWidth = 60
)

// GetMaxTableLabelWidth calculates the maximum width for row labels in table output
// based on terminal width and table configuration.
func GetMaxTableLabelWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Compare + Metric + Base + Value + Change with borders and padding
	baseWidth := 75

	available := termWidth - baseWidth
	if available < minLabelWidth {
		return minLabelWidth
	}
	if available > maxLabelWidth {
		return maxLabelWidth
	}
	return available
}
