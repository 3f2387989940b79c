package weather

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestResolver(order string) *Resolver {
	c := NewCatalog(WindAvg1Min)
	return NewResolver(BuildAssignment(c, DefaultGroupDefaults(), nil), order)
}

func TestResolve_PreferredTransmitter(t *testing.T) {
	ix := NewReadingIndex()
	ix.Set("1", "temp", 70.0)
	ix.Set("3", "temp", 71.0)

	v, ok := newTestResolver(DefaultTransmitterOrder).Resolve(ix, "temp")

	assert.True(t, ok)
	assert.Equal(t, 70.0, v)
}

func TestResolve_PreferredBeatsEarlierInOrder(t *testing.T) {
	c := NewCatalog(WindAvg1Min)
	a := BuildAssignment(c, GroupDefaults{Weather: "5", Soil: "2"}, nil)
	r := NewResolver(a, DefaultTransmitterOrder)

	ix := NewReadingIndex()
	ix.Set("1", "temp", 60.0)
	ix.Set("5", "temp", 65.0)

	v, ok := r.Resolve(ix, "temp")
	assert.True(t, ok)
	assert.Equal(t, 65.0, v)
}

func TestResolve_FallbackOrder(t *testing.T) {
	ix := NewReadingIndex()
	ix.Set("3", "temp", 71.0)

	v, ok := newTestResolver("12348").Resolve(ix, "temp")

	assert.True(t, ok)
	assert.Equal(t, 71.0, v)
}

func TestResolve_FallbackFirstMatchWins(t *testing.T) {
	ix := NewReadingIndex()
	ix.Set("8", "temp", 80.0)
	ix.Set("4", "temp", 74.0)

	v, ok := newTestResolver("28416").Resolve(ix, "temp")
	assert.True(t, ok)
	assert.Equal(t, 80.0, v)

	v, ok = newTestResolver("24816").Resolve(ix, "temp")
	assert.True(t, ok)
	assert.Equal(t, 74.0, v)
}

func TestResolve_Absent(t *testing.T) {
	ix := NewReadingIndex()
	ix.Set("9", "temp", 90.0)

	_, ok := newTestResolver("12345678BIA").Resolve(ix, "temp")
	assert.False(t, ok)

	_, ok = newTestResolver("").Resolve(ix, "pm_2p5")
	assert.False(t, ok)
}

func TestResolve_NonNumericFallsThrough(t *testing.T) {
	ix := NewReadingIndex()
	ix.Set("1", "temp", true)
	ix.Set("2", "temp", "68.5")

	v, ok := newTestResolver("12").Resolve(ix, "temp")
	assert.True(t, ok)
	assert.Equal(t, 68.5, v)
}

func TestResolveMetric_AppliesScale(t *testing.T) {
	ix := NewReadingIndex()
	ix.Set("1", "temp", 10.0)

	v, ok := newTestResolver("").ResolveMetric(ix, MetricSpec{Name: "x", NativeField: "temp", Scale: 2.5})
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)
}

func TestResolve_NonFiniteIsAbsent(t *testing.T) {
	for _, bad := range []any{"NaN", "Inf", "-Inf", "Infinity", math.NaN(), math.Inf(-1)} {
		ix := NewReadingIndex()
		ix.Set("1", "temp", bad)

		_, ok := newTestResolver("1").Resolve(ix, "temp")
		assert.False(t, ok, "value %v", bad)

		ix.Set("2", "temp", 61.0)
		v, ok := newTestResolver("12").Resolve(ix, "temp")
		assert.True(t, ok, "value %v", bad)
		assert.Equal(t, 61.0, v)
	}
}
