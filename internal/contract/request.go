package contract

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/huangsam/datacompare/schema"
)

// ParseCompareRequest reads the report method and comparison lists from query values.
// Lists accept both repeated "name" and "name[]" parameters; values are never split
// on commas because segment definitions use them as the OR operator.
func ParseCompareRequest(values url.Values) schema.CompareRequest {
	return schema.CompareRequest{
		Method:   strings.TrimSpace(values.Get(schema.ParamMethod)),
		Segments: listParam(values, schema.ParamCompareSegments),
		Dates:    listParam(values, schema.ParamCompareDates),
		Periods:  listParam(values, schema.ParamComparePeriods),
	}
}

// ParseReportSelection reads the base report selection from query values.
func ParseReportSelection(values url.Values) (ReportSelection, error) {
	sel := ReportSelection{
		Method:  strings.TrimSpace(values.Get(schema.ParamMethod)),
		Segment: values.Get(schema.ParamSegment),
	}
	if sel.Method == "" {
		return sel, fmt.Errorf("%s is required", schema.ParamMethod)
	}

	siteStr := values.Get(schema.ParamIDSite)
	site, err := strconv.Atoi(siteStr)
	if err != nil || site <= 0 {
		return sel, fmt.Errorf("invalid %s %q", schema.ParamIDSite, siteStr)
	}
	sel.SiteID = site

	period, err := schema.ParsePeriod(values.Get(schema.ParamPeriod), values.Get(schema.ParamDate))
	if err != nil {
		return sel, err
	}
	sel.Period = period
	return sel, nil
}

// listParam collects name and name[] values, in that order.
func listParam(values url.Values, name string) []string {
	var out []string
	out = append(out, values[name]...)
	out = append(out, values[name+"[]"]...)
	return out
}
