package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricRecord is one flat, tagged observation from a snapshot table.
// All records handed to the aggregation engines in a single call share the
// same SnapshotDate; the engines never merge across snapshots.
//
// Records are immutable inputs: the engines only read them and build new
// derived structures.
type MetricRecord struct {
	SnapshotDate       time.Time        `json:"snapshot_date"`
	MetricType         string           `json:"metric_type"`
	EntityID           string           `json:"id"`
	Label              string           `json:"label"`
	Count              *int64           `json:"count"`
	ValueAUD           *decimal.Decimal `json:"value_aud"`
	OverallPercentage  *float64         `json:"overall_percentage"`
	CategoryPercentage *float64         `json:"category_percentage"`
	ContractCount      *int64           `json:"contract_count"`
	Rank               *int64           `json:"rank"`
	IsMultiCountry     bool             `json:"is_multi_country"`
}

// CountValue returns the record's count, or 0 when absent.
func (r MetricRecord) CountValue() int64 {
	if r.Count == nil {
		return 0
	}
	return *r.Count
}

// MoneyValue returns the record's monetary value, or zero when absent.
func (r MetricRecord) MoneyValue() decimal.Decimal {
	if r.ValueAUD == nil {
		return decimal.Zero
	}
	return *r.ValueAUD
}

// ContractsValue returns the number of distinct contracts behind the
// record: contract_count when the snapshot carries it, the plain count
// otherwise. Adoption shares divide contracts by contracts, so this is
// the value cross-tabs and their denominators use; for rows where
// count already means contracts the two are identical.
func (r MetricRecord) ContractsValue() int64 {
	if r.ContractCount != nil {
		return *r.ContractCount
	}
	return r.CountValue()
}

// CountAsFloat exposes the count as a nullable float for the derivation
// helpers, preserving the distinction between "absent" and "zero".
func (r MetricRecord) CountAsFloat() *float64 {
	if r.Count == nil {
		return nil
	}
	f := float64(*r.Count)
	return &f
}

// MoneyAsFloat exposes value_aud as a nullable float.
func (r MetricRecord) MoneyAsFloat() *float64 {
	if r.ValueAUD == nil {
		return nil
	}
	f := r.ValueAUD.InexactFloat64()
	return &f
}

// DimensionCell is one slice of a cross-tabulated entity: the portion of the
// entity observed under a single dimension value (e.g. one country).
type DimensionCell struct {
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DimensionalEntity is the cross-tabulation output for one entity: its total
// across all dimension values plus the per-dimension breakdown. Entities
// present under more than one dimension value (or flagged upstream) carry
// SpansMultipleCountries so reports can highlight them.
type DimensionalEntity struct {
	EntityID               string                   `json:"id"`
	Name                   string                   `json:"name"`
	PerDimensionValue      map[string]DimensionCell `json:"per_dimension_value"`
	TotalCount             int64                    `json:"total_count"`
	SpansMultipleCountries bool                     `json:"spans_multiple_countries"`
}
