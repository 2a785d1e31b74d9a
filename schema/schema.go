// Package schema has the report model, request types and constants for all parts of datacompare.
package schema

import "strconv"

// VariantParams is one point in the comparison space. Empty fields keep the base report's value.
type VariantParams struct {
	Segment string `json:"segment,omitempty"`
	Date    string `json:"date,omitempty"`
	Period  string `json:"period,omitempty"`
}

// IsBaseline reports whether the variant overrides nothing.
func (v VariantParams) IsBaseline() bool {
	return v.Segment == "" && v.Date == "" && v.Period == ""
}

// CompareRequest carries the report method and the requested comparison dimensions.
type CompareRequest struct {
	Method   string   `json:"method"`
	Segments []string `json:"compareSegments,omitempty"`
	Dates    []string `json:"compareDates,omitempty"`
	Periods  []string `json:"comparePeriods,omitempty"`
}

// ReportKey addresses one archived report table.
type ReportKey struct {
	SiteID  int    `json:"idSite"`
	Method  string `json:"method"`
	Period  string `json:"period"`
	Date    string `json:"date"`
	Segment string `json:"segment,omitempty"`
}

// Params renders the key as report request parameters.
func (k ReportKey) Params() map[string]any {
	params := map[string]any{
		ParamIDSite: strconv.Itoa(k.SiteID),
		ParamPeriod: k.Period,
		ParamDate:   k.Date,
	}
	if k.Segment != "" {
		params[ParamSegment] = k.Segment
	}
	return params
}

// ReportSummary describes an archived report without its payload.
type ReportSummary struct {
	ReportKey
	Rows      int   `json:"rows"`
	UpdatedAt int64 `json:"updated_at"`
}
