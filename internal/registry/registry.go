// Package registry resolves numeric metric ids to metric names.
package registry

import (
	"context"
	"maps"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
)

// Static serves the built-in metric names plus configured overrides.
type Static struct {
	names map[string]string
}

var _ contract.MetricRegistry = &Static{}

// NewStatic returns the built-in mapping with overrides applied on top.
func NewStatic(overrides map[string]string) *Static {
	names := maps.Clone(schema.DefaultMetricNames)
	maps.Copy(names, overrides)
	return &Static{names: names}
}

// GetMapping returns a copy of the mapping.
func (s *Static) GetMapping(_ context.Context) (map[string]string, error) {
	return maps.Clone(s.names), nil
}

// Overlay applies fixed overrides on top of another registry.
type Overlay struct {
	Base      contract.MetricRegistry
	Overrides map[string]string
}

var _ contract.MetricRegistry = &Overlay{}

// WithOverrides returns base unchanged when there is nothing to override.
func WithOverrides(base contract.MetricRegistry, overrides map[string]string) contract.MetricRegistry {
	if len(overrides) == 0 {
		return base
	}
	return &Overlay{Base: base, Overrides: maps.Clone(overrides)}
}

// GetMapping merges the overrides into the base mapping.
func (o *Overlay) GetMapping(ctx context.Context) (map[string]string, error) {
	names, err := o.Base.GetMapping(ctx)
	if err != nil {
		return nil, err
	}
	out := maps.Clone(names)
	if out == nil {
		out = make(map[string]string, len(o.Overrides))
	}
	maps.Copy(out, o.Overrides)
	return out, nil
}
