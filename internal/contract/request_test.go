package contract

import (
	"net/url"
	"testing"

	"github.com/huangsam/datacompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompareRequest(t *testing.T) {
	values, err := url.ParseQuery("method=Actions.getPageUrls" +
		"&compareSegments[]=browserCode%3D%3DFF%2CbrowserCode%3D%3DCH" +
		"&compareSegments[]=deviceType%3D%3Dsmartphone" +
		"&compareDates=2020-01-01&comparePeriods=day")
	require.NoError(t, err)

	req := ParseCompareRequest(values)
	assert.Equal(t, "Actions.getPageUrls", req.Method)
	assert.Equal(t, []string{"browserCode==FF,browserCode==CH", "deviceType==smartphone"}, req.Segments)
	assert.Equal(t, []string{"2020-01-01"}, req.Dates)
	assert.Equal(t, []string{"day"}, req.Periods)

	empty := ParseCompareRequest(url.Values{})
	assert.Empty(t, empty.Segments)
	assert.Empty(t, empty.Dates)
}

func TestParseReportSelection(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{name: "valid", query: "method=VisitsSummary.get&idSite=1&period=day&date=2020-01-01"},
		{name: "missing method", query: "idSite=1&period=day&date=2020-01-01", wantErr: "method is required"},
		{name: "bad site", query: "method=X.y&idSite=abc&period=day&date=2020-01-01", wantErr: "invalid idSite"},
		{name: "zero site", query: "method=X.y&idSite=0&period=day&date=2020-01-01", wantErr: "invalid idSite"},
		{name: "bad period", query: "method=X.y&idSite=1&period=decade&date=2020-01-01", wantErr: "invalid period"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			sel, err := ParseReportSelection(values)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, sel.SiteID)
			assert.Equal(t, schema.DayPeriod, sel.Period.Label)
		})
	}
}
