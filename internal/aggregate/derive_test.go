package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestPercentageOfTotal(t *testing.T) {
	tests := []struct {
		name  string
		part  *float64
		whole *float64
		want  float64
	}{
		{"simple", f(25), f(100), 25},
		{"nil part", nil, f(100), 0},
		{"nil whole", f(25), nil, 0},
		{"zero whole", f(25), f(0), 0},
		{"negative whole", f(25), f(-10), 0},
		{"zero part", f(0), f(100), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageOfTotal(tt.part, tt.whole)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.IsNaN(got))
			assert.False(t, math.IsInf(got, 0))
		})
	}
}

func TestPercentageOfTotalComplement(t *testing.T) {
	whole := 73.0
	for _, part := range []float64{0, 1, 12.5, 36.5, 73} {
		rest := whole - part
		sum := PercentageOfTotal(&part, &whole) + PercentageOfTotal(&rest, &whole)
		assert.InDelta(t, 100, sum, 1e-9)
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 2.5, Average(f(10), f(4)))
	assert.Zero(t, Average(f(10), f(0)))
	assert.Zero(t, Average(f(10), nil))
	assert.Zero(t, Average(nil, f(4)))
}

func TestClampPercentage(t *testing.T) {
	assert.Zero(t, ClampPercentage(nil))
	assert.Zero(t, ClampPercentage(f(-3)))
	assert.Equal(t, 100.0, ClampPercentage(f(180)))
	assert.Equal(t, 42.0, ClampPercentage(f(42)))
}

type item struct {
	name  string
	value float64
	count int64
}

func itemKey(i item) float64 { return i.value }
func itemCount(i item) int64 { return i.count }
func itemName(i item) string { return i.name }

func TestTopNTieBreak(t *testing.T) {
	items := []item{
		{name: "a", value: 5, count: 5},
		{name: "b", value: 5, count: 5},
		{name: "c", value: 2, count: 2},
		{name: "d", value: 9, count: 9},
	}

	top := TopN(items, 3, itemKey, itemCount)

	require.Len(t, top, 3)
	assert.Equal(t, "d", top[0].name)
	// Tied items keep their original relative order.
	assert.Equal(t, "a", top[1].name)
	assert.Equal(t, "b", top[2].name)
}

func TestTopNCountBreaksValueTies(t *testing.T) {
	items := []item{
		{name: "low", value: 5, count: 1},
		{name: "high", value: 5, count: 9},
	}

	top := TopN(items, 2, itemKey, itemCount)

	assert.Equal(t, "high", top[0].name)
	assert.Equal(t, "low", top[1].name)
}

func TestTopNDoesNotMutateInput(t *testing.T) {
	items := []item{{name: "a", value: 1}, {name: "b", value: 2}}

	TopN(items, 1, itemKey, itemCount)

	assert.Equal(t, "a", items[0].name)
	assert.Equal(t, "b", items[1].name)
}

func TestRankAndSort(t *testing.T) {
	items := []item{
		{name: "mid", value: 5},
		{name: "top", value: 9},
		{name: "bottom", value: 1},
	}

	ranked := RankAndSort(items, itemKey, itemCount)

	require.Len(t, ranked, 3)
	assert.Equal(t, 0, ranked[0].Position)
	assert.Equal(t, "top", ranked[0].Item.name)
	assert.Equal(t, 2, ranked[2].Position)
	assert.Equal(t, "bottom", ranked[2].Item.name)
}

func TestSortLexicalIsCaseInsensitive(t *testing.T) {
	items := []item{{name: "vietnam"}, {name: "Australia"}, {name: "philippines"}}

	sorted := SortLexical(items, itemName)

	assert.Equal(t, "Australia", sorted[0].name)
	assert.Equal(t, "philippines", sorted[1].name)
	assert.Equal(t, "vietnam", sorted[2].name)
}
