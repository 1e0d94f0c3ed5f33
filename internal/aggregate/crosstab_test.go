package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-api/internal/model"
)

func TestParseDimensionSuffix(t *testing.T) {
	tests := []struct {
		label    string
		wantBase string
		wantDim  string
	}{
		{"Premium Plan (PH)", "Premium Plan", "PH"},
		{"Standard Plan", "Standard Plan", "Unknown"},
		{"Dependent Cover (TH) ", "Dependent Cover", "TH"},
		{"Weird ()", "Weird ()", "Unknown"},
		{"Nested (outer (inner))", "Nested (outer", "inner)"},
		{"", "", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			base, dim := ParseDimensionSuffix(tt.label)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantDim, dim)
		})
	}
}

func TestBuildCrossTableSumsAcrossDimensions(t *testing.T) {
	records := []model.MetricRecord{
		record("health_insurance_plan", "A", "Premium Plan (PH)", 10),
		record("health_insurance_plan", "A", "Premium Plan (TH)", 5),
	}

	entities, stats := BuildCrossTable(records)

	require.Len(t, entities, 1)
	entity := entities[0]
	assert.Equal(t, "A", entity.EntityID)
	assert.Equal(t, "Premium Plan", entity.Name)
	assert.Equal(t, int64(15), entity.TotalCount)
	assert.True(t, entity.SpansMultipleCountries)
	require.Len(t, entity.PerDimensionValue, 2)
	assert.Equal(t, int64(10), entity.PerDimensionValue["PH"].Count)
	assert.Equal(t, int64(5), entity.PerDimensionValue["TH"].Count)
	assert.Zero(t, stats.UnknownDimensionRows)
}

func TestBuildCrossTableUpstreamHintAloneIsSufficient(t *testing.T) {
	r := record("health_insurance_plan", "B", "Basic Plan (VN)", 3)
	r.IsMultiCountry = true

	entities, _ := BuildCrossTable([]model.MetricRecord{r})

	require.Len(t, entities, 1)
	assert.True(t, entities[0].SpansMultipleCountries)
}

func TestBuildCrossTableUnknownBucketIsVisible(t *testing.T) {
	entities, stats := BuildCrossTable([]model.MetricRecord{
		record("addon", "dep", "Dependent Cover", 7),
		record("addon", "dep", "Dependent Cover (SG)", 2),
	})

	require.Len(t, entities, 1)
	entity := entities[0]
	assert.Equal(t, int64(9), entity.TotalCount)
	assert.Equal(t, int64(7), entity.PerDimensionValue[UnknownDimension].Count)
	assert.False(t, entity.SpansMultipleCountries, "Unknown does not count as a second dimension value")
	assert.Equal(t, 1, stats.UnknownDimensionRows)
}

func TestBuildCrossTableSortOrder(t *testing.T) {
	entities, _ := BuildCrossTable([]model.MetricRecord{
		record("plan", "a", "alpha (AU)", 5),
		record("plan", "b", "Beta (AU)", 9),
		record("plan", "c", "Alpha Two (AU)", 5),
	})

	require.Len(t, entities, 3)
	assert.Equal(t, "Beta", entities[0].Name)
	// Tied totals sort by base name, case-insensitive.
	assert.Equal(t, "alpha", entities[1].Name)
	assert.Equal(t, "Alpha Two", entities[2].Name)
}

func TestBuildCrossTableCountsContractsNotUnits(t *testing.T) {
	// Hardware rows count units sold; contract_count is the number of
	// contracts with the add-on, which is what adoption measures.
	r := record("hardware_addon", "mouse", "Mouse (PH)", 100)
	contracts := int64(40)
	r.ContractCount = &contracts

	entities, _ := BuildCrossTable([]model.MetricRecord{r})

	require.Len(t, entities, 1)
	assert.Equal(t, int64(40), entities[0].TotalCount)
	assert.Equal(t, int64(40), entities[0].PerDimensionValue["PH"].Count)
}

func TestBuildCrossTablesKeepsCategoriesApart(t *testing.T) {
	// Entity ids are only unique within one category; the same id in
	// hardware and software must stay two entities.
	entities, stats := BuildCrossTables(
		[]model.MetricRecord{record("hardware_addon", "x1", "Mouse (PH)", 10)},
		[]model.MetricRecord{record("software_addon", "x1", "Antivirus (PH)", 25)},
	)

	require.Len(t, entities, 2)
	assert.Equal(t, "Antivirus", entities[0].Name)
	assert.Equal(t, int64(25), entities[0].TotalCount)
	assert.Equal(t, "Mouse", entities[1].Name)
	assert.Equal(t, int64(10), entities[1].TotalCount)
	assert.Zero(t, stats.UnknownDimensionRows)
}

func TestWithDimensionShares(t *testing.T) {
	entities, _ := BuildCrossTable([]model.MetricRecord{
		record("plan", "a", "Premium (PH)", 10),
		record("plan", "a", "Premium (TH)", 5),
	})

	shared := WithDimensionShares(entities, map[string]float64{"PH": 40, "TH": 0})

	require.Len(t, shared, 1)
	assert.Equal(t, 25.0, shared[0].PerDimensionValue["PH"].Percentage)
	// Zero denominator degrades to zero, never to NaN.
	assert.Zero(t, shared[0].PerDimensionValue["TH"].Percentage)
	// Originals stay untouched.
	assert.Zero(t, entities[0].PerDimensionValue["PH"].Percentage)
}

func TestPipelineIsDeterministic(t *testing.T) {
	records := []model.MetricRecord{
		record("plan", "a", "Premium (PH)", 10),
		record("plan", "b", "Basic (TH)", 5),
		record("plan", "a", "Premium (TH)", 3),
		record("country", "PH", "PH", 40),
	}

	run := func() []model.DimensionalEntity {
		view := Group(records)
		entities, _ := BuildCrossTable(view.Records("plan"))
		return WithDimensionShares(entities, map[string]float64{"PH": 40, "TH": 20})
	}

	assert.Equal(t, run(), run(), "identical inputs must produce deeply equal output")
}
