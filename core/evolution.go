package core

import "math"

// EvolutionFunc computes the signed percentage change from oldValue to newValue,
// rounded to precision decimals.
type EvolutionFunc func(newValue, oldValue float64, precision int) float64

// comparisonPrecision is the rounding applied to every change column.
const comparisonPrecision = 1

// CalculateEvolution is the standard evolution: 0 when nothing changed, 100 when the old
// value was zero, otherwise the relative change in percent.
func CalculateEvolution(newValue, oldValue float64, precision int) float64 {
	delta := newValue - oldValue
	var pct float64
	switch {
	case delta == 0:
		pct = 0
	case oldValue == 0:
		pct = 100
	default:
		pct = delta / oldValue * 100
	}
	return roundTo(pct, precision)
}

// roundTo rounds half away from zero.
func roundTo(v float64, precision int) float64 {
	if precision < 0 {
		precision = 0
	}
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}
