// Package display renders raw metric values as display strings.
package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

// Formatter formats metric columns in place. Values that are already strings are left
// alone, so a second pass over the same table changes nothing.
type Formatter struct {
	Precision int
}

var _ contract.MetricFormatter = &Formatter{}

// NewFormatter returns a Formatter rounding plain floats to precision decimals.
func NewFormatter(precision int) *Formatter {
	return &Formatter{Precision: precision}
}

// FormatMetrics formats every numeric column of every row in table.
func (f *Formatter) FormatMetrics(table *schema.Table) {
	for _, row := range table.Rows() {
		for _, name := range row.Columns() {
			if name == schema.LabelColumn {
				continue
			}
			value, _ := row.Column(name)
			if _, isString := value.(string); isString {
				continue
			}
			v, ok := schema.ToFloat(value)
			if !ok {
				continue
			}
			row.SetColumn(name, f.FormatValue(name, v))
		}
	}
}

// FormatValue renders a single metric value according to its column name.
func (f *Formatter) FormatValue(name string, v float64) string {
	switch {
	case strings.HasSuffix(name, schema.ChangeSuffix):
		return FormatChange(v)
	case strings.HasSuffix(name, "_rate"):
		return f.commaf(v*100) + "%"
	case strings.Contains(name, "time") || strings.Contains(name, "length"):
		return FormatDuration(v)
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return humanize.Comma(int64(v))
	default:
		return f.commaf(v)
	}
}

// commaf rounds before formatting since humanize truncates extra digits.
func (f *Formatter) commaf(v float64) string {
	p := math.Pow(10, float64(max(f.Precision, 0)))
	return humanize.CommafWithDigits(math.Round(v*p)/p, f.Precision)
}

// FormatChange renders an evolution as a signed percentage with one decimal.
func FormatChange(v float64) string {
	if v == 0 {
		return "0%"
	}
	return fmt.Sprintf("%+.1f%%", v)
}

// FormatDuration renders seconds as hh:mm:ss.
func FormatDuration(seconds float64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	total := int64(math.Round(seconds))
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, (total/60)%60, total%60)
}
