// Package aggregate turns flat snapshot metric rows into the grouped,
// joined, derived and cross-tabulated structures the report endpoints
// serve. Every function here is a pure computation over its inputs:
// no state survives a call, and identical inputs produce deeply equal
// outputs. Malformed data degrades to documented defaults; only caller
// contract violations return errors.
package aggregate

import "dashboard-api/internal/model"

// GroupedView is a stable partition of one snapshot's records by
// metric_type. Within each partition the input order is preserved, and
// Keys() lists the categories in first-seen order.
type GroupedView struct {
	keys   []string
	groups map[string][]model.MetricRecord
}

// Group partitions records by their metric_type. It is schema-agnostic:
// unknown category values are retained as-is, and an empty input yields
// an empty view.
func Group(records []model.MetricRecord) GroupedView {
	view := GroupedView{groups: make(map[string][]model.MetricRecord)}
	for _, record := range records {
		if _, seen := view.groups[record.MetricType]; !seen {
			view.keys = append(view.keys, record.MetricType)
		}
		view.groups[record.MetricType] = append(view.groups[record.MetricType], record)
	}
	return view
}

// Keys returns the category keys in first-seen order.
func (v GroupedView) Keys() []string {
	keys := make([]string, len(v.keys))
	copy(keys, v.keys)
	return keys
}

// Records returns the partition for one category, in input order. A
// missing category yields nil, never an error.
func (v GroupedView) Records(metricType string) []model.MetricRecord {
	return v.groups[metricType]
}

// First returns the first record of a category, if the category has any.
func (v GroupedView) First(metricType string) (model.MetricRecord, bool) {
	records := v.groups[metricType]
	if len(records) == 0 {
		return model.MetricRecord{}, false
	}
	return records[0], true
}

// Len reports the total number of records across all partitions.
func (v GroupedView) Len() int {
	total := 0
	for _, records := range v.groups {
		total += len(records)
	}
	return total
}

// Flatten concatenates all partitions back in category order. Together
// with Group it is lossless: the result is the same multiset of records
// the view was built from.
func (v GroupedView) Flatten() []model.MetricRecord {
	flat := make([]model.MetricRecord, 0, v.Len())
	for _, key := range v.keys {
		flat = append(flat, v.groups[key]...)
	}
	return flat
}
