package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoDomainRate(t *testing.T) {
	d := AutoDomain([]float64{10, 90}, KindRate, 0)

	require.Equal(t, 0.0, math.Mod(d.Min, 5))
	require.Equal(t, 0.0, math.Mod(d.Max, 5))
	require.GreaterOrEqual(t, d.Min, 0.0)
	require.LessOrEqual(t, d.Min, 10.0)
	require.GreaterOrEqual(t, d.Max, 90.0)
	require.LessOrEqual(t, d.Max, 100.0)
	require.Equal(t, Domain{Min: 0, Max: 100}, d)
}

func TestAutoDomainRateEdges(t *testing.T) {
	assert.Equal(t, Domain{Min: 45, Max: 55}, AutoDomain([]float64{50, 50}, KindRate, 0))
	// padding floor of 2 pushes past 100, then the ceiling caps it
	assert.Equal(t, Domain{Min: 95, Max: 100.5}, AutoDomain([]float64{99, 100}, KindRate, 0))
}

func TestAutoDomainIndex(t *testing.T) {
	d := AutoDomain([]float64{0.4, 0.6}, KindIndex, 0)
	assert.InDelta(t, 0.38, d.Min, 1e-9)
	assert.InDelta(t, 0.62, d.Max, 1e-9)

	flat := AutoDomain([]float64{0.5}, KindIndex, 0)
	assert.InDelta(t, 0.4, flat.Min, 1e-9)
	assert.InDelta(t, 0.6, flat.Max, 1e-9)

	signed := AutoDomain([]float64{-0.5, 1.2}, KindIndex, -0.2)
	assert.InDelta(t, -0.2, signed.Min, 1e-9)
	assert.InDelta(t, 1.05, signed.Max, 1e-9)
}

func TestAutoDomainMinimumSpan(t *testing.T) {
	d := AutoDomain([]float64{-1, -1}, KindIndex, 0)
	assert.InDelta(t, 0, d.Min, 1e-9)
	assert.InDelta(t, 0.2, d.Max, 1e-9)

	rate := AutoDomain([]float64{150}, KindRate, 0)
	assert.Equal(t, Domain{Min: 145, Max: 155}, rate)
}

func TestAutoDomainCount(t *testing.T) {
	assert.Equal(t, Domain{Min: 2, Max: 8}, AutoDomain([]float64{3, 7}, KindCount, 0))
	assert.Equal(t, Domain{Min: 2, Max: 6}, AutoDomain([]float64{4}, KindDuration, 0))
	assert.Equal(t, Domain{Min: 90, Max: 210}, AutoDomain([]float64{100, 200}, KindCount, 0))
}

func TestAutoDomainDefaults(t *testing.T) {
	assert.Equal(t, Domain{Min: 0, Max: 100}, AutoDomain(nil, KindRate, 0))
	assert.Equal(t, Domain{Min: 0, Max: 10}, AutoDomain([]float64{math.NaN(), math.Inf(1)}, KindCount, 0))
	assert.Equal(t, Domain{Min: -0.2, Max: 1}, AutoDomain(nil, KindIndex, -0.2))
}

func TestAutoDomainIsDeterministic(t *testing.T) {
	values := []float64{12.5, 3, 47.25, 19}
	require.Equal(t, AutoDomain(values, KindRate, 0), AutoDomain(values, KindRate, 0))
}

func TestChartValue(t *testing.T) {
	rate := mustLookup(t, KeySuccessRate)
	f, ok := ChartValue(rate, Of(0.8)).Float()
	require.True(t, ok)
	assert.InDelta(t, 80, f, 1e-9)

	f, ok = ChartValue(rate, Of(45)).Float()
	require.True(t, ok)
	assert.Equal(t, 45.0, f)

	f, ok = ChartValue(mustLookup(t, KeyDifficultyIndex), Of(0.8)).Float()
	require.True(t, ok)
	assert.Equal(t, 0.8, f)

	require.False(t, ChartValue(rate, Absent()).Present())
}

func TestDomainForFixedAxis(t *testing.T) {
	d := DomainFor(mustLookup(t, KeySuccessRate), []Value{Of(0.1)})
	require.True(t, d.Fixed)
	assert.Equal(t, 75.0, d.Min)
	assert.Equal(t, 100.0, d.Max)
	assert.Equal(t, []float64{70, 75, 80, 85, 90, 95, 100}, d.Ticks)
}

func TestDomainForPinnedMin(t *testing.T) {
	def := mustLookup(t, KeyCommentCount)

	d := DomainFor(def, []Value{Of(3), Absent(), Of(7)})
	assert.False(t, d.Fixed)
	assert.Equal(t, Domain{Min: 0, Max: 8}, d)

	assert.Equal(t, Domain{Min: 0, Max: 10}, DomainFor(def, []Value{Absent()}))
}

func TestReferenceLines(t *testing.T) {
	lines := ReferenceLines(mustLookup(t, KeySuccessRate))
	require.Len(t, lines, 2)
	assert.Equal(t, ClassBad, lines[0].Class)
	assert.InDelta(t, 80, lines[0].Value, 1e-9)
	assert.Equal(t, "Bad < 80.0%", lines[0].Label)
	assert.Equal(t, ClassGood, lines[1].Class)
	assert.InDelta(t, 85, lines[1].Value, 1e-9)
	assert.Equal(t, "Good > 85.0%", lines[1].Label)

	inverted := ReferenceLines(mustLookup(t, KeyAvgAttemptsPassed))
	require.Len(t, inverted, 2)
	assert.Equal(t, "Bad > 3.5", inverted[0].Label)
	assert.Equal(t, "Good < 1.5", inverted[1].Label)

	require.Empty(t, ReferenceLines(mustLookup(t, KeySkipRate)))
}

func TestCatalogIsImmutable(t *testing.T) {
	defs := Definitions()
	require.Equal(t, KeySuccessRate, defs[0].Key)
	require.Len(t, defs, 14)

	defs[0].Thresholds.Good = 0
	defs[0].Axis.Ticks[0] = -1

	fresh := mustLookup(t, KeySuccessRate)
	require.Equal(t, 0.85, fresh.Thresholds.Good)
	require.Equal(t, 70.0, fresh.Axis.Ticks[0])

	require.Equal(t, KeySuccessRate, Resolve("missing").Key)
	require.Equal(t, KeyViews, Resolve(KeyViews).Key)
}
