package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEvolution(t *testing.T) {
	tests := []struct {
		name      string
		newValue  float64
		oldValue  float64
		precision int
		want      float64
	}{
		{"no change", 10, 10, 1, 0},
		{"both zero", 0, 0, 1, 0},
		{"new from zero", 7, 0, 1, 100},
		{"removed", 0, 5, 1, -100},
		{"decrease", 7, 10, 1, -30},
		{"increase", 12, 10, 1, 20},
		{"rounded", 1, 3, 1, -66.7},
		{"rounded to two digits", 2, 3, 2, -33.33},
		{"zero precision", 1, 3, 0, -67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateEvolution(tt.newValue, tt.oldValue, tt.precision), 1e-9)
		})
	}
}

func FuzzCalculateEvolution(f *testing.F) {
	f.Add(7.0, 10.0)
	f.Add(0.0, 0.0)
	f.Add(-3.0, 4.0)
	f.Fuzz(func(t *testing.T, newValue, oldValue float64) {
		if math.IsNaN(newValue) || math.IsNaN(oldValue) || math.IsInf(newValue, 0) || math.IsInf(oldValue, 0) {
			return
		}
		if math.Abs(newValue) > 1e12 || math.Abs(oldValue) > 1e12 || (oldValue != 0 && math.Abs(oldValue) < 1e-6) {
			return
		}
		got := CalculateEvolution(newValue, oldValue, 1)
		if newValue == oldValue && got != 0 {
			t.Fatalf("unchanged value %v gave %v", newValue, got)
		}
		if oldValue == 0 && newValue != 0 && got != 100 {
			t.Fatalf("new value from zero gave %v", got)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("non-finite evolution %v", got)
		}
	})
}
