package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/datacompare/schema"
)

// fakeExecutor serves tables keyed by the variant fields of the request.
type fakeExecutor struct {
	tables map[string]*schema.Table
	calls  []map[string]any
	err    error
	failAt int // 1-based call number that fails, 0 never
}

func variantKey(segment, date, period string) string {
	return fmt.Sprintf("%s|%s|%s", segment, date, period)
}

func (f *fakeExecutor) Execute(_ context.Context, _ string, params map[string]any) (*schema.Table, error) {
	f.calls = append(f.calls, params)
	if f.err != nil && (f.failAt == 0 || f.failAt == len(f.calls)) {
		return nil, f.err
	}
	segment, _ := params[schema.ParamSegment].(string)
	date, _ := params[schema.ParamDate].(string)
	period, _ := params[schema.ParamPeriod].(string)
	if table, ok := f.tables[variantKey(segment, date, period)]; ok {
		return table, nil
	}
	return schema.NewTable(), nil
}

// staticRegistry returns a fixed mapping and counts calls.
type staticRegistry struct {
	mapping map[string]string
	calls   int
	err     error
}

func (r *staticRegistry) GetMapping(context.Context) (map[string]string, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.mapping, nil
}

// countingFormatter records how many times each table was formatted.
type countingFormatter struct {
	seen map[*schema.Table]int
}

func (c *countingFormatter) FormatMetrics(table *schema.Table) {
	if c.seen == nil {
		c.seen = make(map[*schema.Table]int)
	}
	c.seen[table]++
}

var errExecutor = errors.New("executor exploded")

// baseTable returns a general table with site and period metadata.
func baseTable(rows ...*schema.Row) *schema.Table {
	t := schema.NewTable()
	t.SetMetadata(schema.MetaSite, 1)
	t.SetMetadata(schema.MetaPeriod, schema.Period{Label: schema.DayPeriod, Date: "2020-01-02"})
	for _, r := range rows {
		t.AddRow(r)
	}
	return t
}

func labeled(label string, cols ...schema.Column) *schema.Row {
	return schema.NewRow(append([]schema.Column{schema.Col(schema.LabelColumn, label)}, cols...)...)
}

func column(t interface{ Helper() }, row *schema.Row, name string) any {
	t.Helper()
	v, _ := row.Column(name)
	return v
}
