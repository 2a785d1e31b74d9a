package core

import (
	"fmt"

	"github.com/huangsam/datacompare/schema"
)

// ExpandVariants turns the requested segments, dates and periods into the ordered list of
// variants to fetch. Dates and periods are paired by position, so both lists must have the
// same length.
//
// An empty list is normalized to a single empty value before expansion, which means the
// result always holds at least one variant. A request with no comparison dimensions still
// runs one baseline pass that establishes the zeroed comparison columns.
//
// The product is iterated segment first, then date/period, keeping input order. A date and
// its period only override the base report when both are non-empty.
func ExpandVariants(segments, dates, periods []string) ([]schema.VariantParams, error) {
	if len(dates) != len(periods) {
		return nil, fmt.Errorf("%w: %d compare dates but %d compare periods", ErrInvalidInput, len(dates), len(periods))
	}

	segments = normalizeDimension(segments)
	dates = normalizeDimension(dates)
	periods = normalizeDimension(periods)

	variants := make([]schema.VariantParams, 0, len(segments)*len(dates))
	for _, segment := range segments {
		for i, date := range dates {
			var v schema.VariantParams
			if segment != "" {
				v.Segment = segment
			}
			if date != "" && periods[i] != "" {
				v.Date = date
				v.Period = periods[i]
			}
			variants = append(variants, v)
		}
	}
	return variants, nil
}

// normalizeDimension maps an empty list to one empty value.
func normalizeDimension(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}
