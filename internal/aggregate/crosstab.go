package aggregate

import (
	"sort"
	"strings"

	"dashboard-api/internal/model"
)

// UnknownDimension is the visible bucket for records whose label
// carries no parseable dimension suffix. Reports render it rather than
// silently dropping the rows.
const UnknownDimension = "Unknown"

// ParseDimensionSuffix splits a label of the form "Premium Plan (PH)"
// into its base name and the trailing parenthesized dimension value.
// Labels without a suffix keep their full text as base name and fall
// into the Unknown dimension.
func ParseDimensionSuffix(label string) (baseName, dimensionValue string) {
	trimmed := strings.TrimSpace(label)
	if !strings.HasSuffix(trimmed, ")") {
		return trimmed, UnknownDimension
	}
	open := strings.LastIndex(trimmed, "(")
	if open < 0 {
		return trimmed, UnknownDimension
	}
	dim := strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])
	if dim == "" {
		return trimmed, UnknownDimension
	}
	return strings.TrimSpace(trimmed[:open]), dim
}

// CrossTableStats surfaces data-quality conditions from a cross-tab
// build so reports can choose to warn about them.
type CrossTableStats struct {
	// UnknownDimensionRows counts records that fell into the Unknown
	// bucket for lack of a parseable suffix.
	UnknownDimensionRows int
}

// BuildCrossTable groups records by entity id, then by the dimension
// value parsed from each record's label, summing counts per dimension
// into the entity total. Cross-tabs count adoption, so each record
// contributes its contract count when the snapshot carries one and its
// plain count otherwise. An entity spans multiple countries when any
// contributing row carries the upstream multi-country hint, or when it
// has more than one distinct non-Unknown dimension value; either signal
// alone is sufficient.
//
// Entity ids are only unique within one metric category; records from
// several categories go through BuildCrossTables instead.
//
// Cell percentages are left at zero here: shares within a dimension
// value depend on a denominator only the caller knows, so they are
// applied separately via WithDimensionShares.
//
// The result is sorted descending by total count, ties ascending by
// base name, case-insensitive.
func BuildCrossTable(records []model.MetricRecord) ([]model.DimensionalEntity, CrossTableStats) {
	var stats CrossTableStats

	order := make([]string, 0)
	entities := make(map[string]*model.DimensionalEntity)
	dimensions := make(map[string]map[string]struct{})

	for _, record := range records {
		base, dim := ParseDimensionSuffix(record.Label)
		if dim == UnknownDimension {
			stats.UnknownDimensionRows++
		}

		entity, seen := entities[record.EntityID]
		if !seen {
			entity = &model.DimensionalEntity{
				EntityID:          record.EntityID,
				Name:              base,
				PerDimensionValue: make(map[string]model.DimensionCell),
			}
			entities[record.EntityID] = entity
			dimensions[record.EntityID] = make(map[string]struct{})
			order = append(order, record.EntityID)
		}

		cell := entity.PerDimensionValue[dim]
		cell.Count += record.ContractsValue()
		entity.PerDimensionValue[dim] = cell
		entity.TotalCount += record.ContractsValue()

		if record.IsMultiCountry {
			entity.SpansMultipleCountries = true
		}
		if dim != UnknownDimension {
			dimensions[record.EntityID][dim] = struct{}{}
		}
	}

	result := make([]model.DimensionalEntity, 0, len(order))
	for _, id := range order {
		entity := entities[id]
		if len(dimensions[id]) > 1 {
			entity.SpansMultipleCountries = true
		}
		result = append(result, *entity)
	}

	sortEntities(result)

	return result, stats
}

// BuildCrossTables cross-tabulates several categories whose entity ids
// are only unique within their own category. Each category is folded
// separately so an id shared across categories stays two entities, and
// the union carries the usual ordering.
func BuildCrossTables(categories ...[]model.MetricRecord) ([]model.DimensionalEntity, CrossTableStats) {
	var stats CrossTableStats

	var result []model.DimensionalEntity
	for _, records := range categories {
		entities, s := BuildCrossTable(records)
		result = append(result, entities...)
		stats.UnknownDimensionRows += s.UnknownDimensionRows
	}

	sortEntities(result)

	return result, stats
}

func sortEntities(entities []model.DimensionalEntity) {
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].TotalCount != entities[j].TotalCount {
			return entities[i].TotalCount > entities[j].TotalCount
		}
		return strings.ToLower(entities[i].Name) < strings.ToLower(entities[j].Name)
	})
}

// WithDimensionShares fills each cell's percentage against the
// caller-supplied denominator for that dimension value, typically the
// total eligible count of the dimension. The denominator is explicit on
// purpose: shares within a dimension must never be computed against the
// cross-entity total. Input entities are not mutated.
func WithDimensionShares(entities []model.DimensionalEntity, denominators map[string]float64) []model.DimensionalEntity {
	result := make([]model.DimensionalEntity, len(entities))
	for i, entity := range entities {
		cells := make(map[string]model.DimensionCell, len(entity.PerDimensionValue))
		for dim, cell := range entity.PerDimensionValue {
			count := float64(cell.Count)
			var denom *float64
			if d, ok := denominators[dim]; ok {
				denom = &d
			}
			cell.Percentage = PercentageOfTotal(&count, denom)
			cells[dim] = cell
		}
		entity.PerDimensionValue = cells
		result[i] = entity
	}
	return result
}
