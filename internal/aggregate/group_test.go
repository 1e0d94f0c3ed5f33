package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-api/internal/model"
)

var testDate = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func record(metricType, id, label string, count int64) model.MetricRecord {
	return model.MetricRecord{
		SnapshotDate: testDate,
		MetricType:   metricType,
		EntityID:     id,
		Label:        label,
		Count:        &count,
	}
}

func TestGroupPartitionsByMetricType(t *testing.T) {
	records := []model.MetricRecord{
		record("plan", "p1", "Starter", 4),
		record("country", "PH", "PH", 10),
		record("plan", "p2", "Premium", 7),
		record("country", "TH", "TH", 3),
	}

	view := Group(records)

	assert.Equal(t, []string{"plan", "country"}, view.Keys())
	require.Len(t, view.Records("plan"), 2)
	assert.Equal(t, "p1", view.Records("plan")[0].EntityID)
	assert.Equal(t, "p2", view.Records("plan")[1].EntityID)
	assert.Nil(t, view.Records("missing"))
}

func TestGroupEmptyInput(t *testing.T) {
	view := Group(nil)

	assert.Empty(t, view.Keys())
	assert.Zero(t, view.Len())
	assert.Empty(t, view.Flatten())
}

func TestGroupFlattenIsLossless(t *testing.T) {
	records := []model.MetricRecord{
		record("a", "1", "one", 1),
		record("b", "2", "two", 2),
		record("a", "3", "three", 3),
		record("c", "4", "four", 4),
		record("b", "5", "five", 5),
	}

	flat := Group(records).Flatten()

	require.Len(t, flat, len(records))
	byID := make(map[string]int)
	for _, r := range records {
		byID[r.EntityID]++
	}
	for _, r := range flat {
		byID[r.EntityID]--
	}
	for id, n := range byID {
		assert.Zerof(t, n, "record %s lost or duplicated", id)
	}

	// Category order, input order within category.
	assert.Equal(t, "1", flat[0].EntityID)
	assert.Equal(t, "3", flat[1].EntityID)
	assert.Equal(t, "2", flat[2].EntityID)
	assert.Equal(t, "5", flat[3].EntityID)
	assert.Equal(t, "4", flat[4].EntityID)
}

func TestGroupRetainsUnknownCategories(t *testing.T) {
	view := Group([]model.MetricRecord{record("brand_new_metric", "x", "X", 1)})

	assert.Equal(t, []string{"brand_new_metric"}, view.Keys())
	first, ok := view.First("brand_new_metric")
	require.True(t, ok)
	assert.Equal(t, "x", first.EntityID)
}
