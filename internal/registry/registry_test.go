package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/datacompare/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRegistry struct{}

func (failingRegistry) GetMapping(context.Context) (map[string]string, error) {
	return nil, errors.New("unavailable")
}

func TestStatic(t *testing.T) {
	reg := NewStatic(map[string]string{"2": "visits", "99": "custom"})
	mapping, err := reg.GetMapping(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "visits", mapping["2"])
	assert.Equal(t, "custom", mapping["99"])
	assert.Equal(t, "nb_uniq_visitors", mapping["1"])
	assert.Equal(t, "nb_visits", schema.DefaultMetricNames["2"], "defaults must not be mutated")

	mapping["1"] = "changed"
	again, _ := reg.GetMapping(context.Background())
	assert.Equal(t, "nb_uniq_visitors", again["1"])
}

func TestWithOverrides(t *testing.T) {
	base := NewStatic(nil)
	assert.Same(t, base, WithOverrides(base, nil))

	reg := WithOverrides(base, map[string]string{"3": "actions"})
	mapping, err := reg.GetMapping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "actions", mapping["3"])
	assert.Equal(t, "nb_visits", mapping["2"])

	_, err = WithOverrides(failingRegistry{}, map[string]string{"1": "x"}).GetMapping(context.Background())
	assert.Error(t, err)
}
