package schema

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericPattern is decimal notation with an optional sign, fraction and exponent,
// surrounded by optional whitespace. Hex, binary, underscores, inf and nan are not numeric.
var numericPattern = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?[ \t\n\r\v\f]*$`)

// ToFloat converts a numeric column value to float64.
// Numeric strings are accepted the same way numeric literals are.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		if !numericPattern.MatchString(n) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsNumeric reports whether a column value can take part in delta math.
func IsNumeric(v any) bool {
	_, ok := ToFloat(v)
	return ok
}

// IsNumericName reports whether a column name is a bare metric id such as "2".
func IsNumericName(name string) bool {
	return numericPattern.MatchString(name)
}

// normalizeNumber turns a decoded json.Number into int64 when integral, float64 otherwise.
func normalizeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
