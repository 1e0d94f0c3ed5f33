package aggregate

import (
	"errors"

	"dashboard-api/internal/model"
)

var (
	// ErrNoCategories is returned when a join is requested with an empty
	// category list. This is a programming error in the calling report,
	// not a data problem.
	ErrNoCategories = errors.New("join requires at least one category key")

	// ErrNoJoinKeys is returned when the key selector rejects every
	// record of the anchor category.
	ErrNoJoinKeys = errors.New("key selector produced no keys for the anchor category")
)

// Composite is one entity assembled from records of several categories
// sharing a join key. Anchor is the record from the first listed
// category; secondary categories that had no match are simply absent
// from ByCategory.
type Composite[K comparable] struct {
	Key        K
	Anchor     model.MetricRecord
	ByCategory map[string]*model.MetricRecord
}

// Record returns the joined record for one category, or nil when the
// category had no match for this key.
func (c Composite[K]) Record(metricType string) *model.MetricRecord {
	return c.ByCategory[metricType]
}

// JoinStats surfaces data-quality conditions observed during a join.
// None of them abort the join.
type JoinStats struct {
	// DuplicatesIgnored counts records that shared a join key with an
	// earlier record of the same category. First occurrence wins.
	DuplicatesIgnored int
	// Unkeyed counts anchor records the key selector rejected.
	Unkeyed int
}

// JoinByKey performs a left join anchored on the first listed category:
// every keyed entity of that category appears exactly once in the
// output, in input order, whether or not the remaining categories have
// a matching record. The key selector returns the join key for a
// record and false when the record carries none.
func JoinByKey[K comparable](
	groups GroupedView,
	categoryKeys []string,
	key func(model.MetricRecord) (K, bool),
) ([]Composite[K], JoinStats, error) {
	var stats JoinStats

	if len(categoryKeys) == 0 {
		return nil, stats, ErrNoCategories
	}

	anchor := groups.Records(categoryKeys[0])

	// Index secondary categories by key, first occurrence winning.
	lookups := make([]map[K]*model.MetricRecord, len(categoryKeys)-1)
	for i, category := range categoryKeys[1:] {
		lookup := make(map[K]*model.MetricRecord)
		for _, record := range groups.Records(category) {
			k, ok := key(record)
			if !ok {
				continue
			}
			if _, dup := lookup[k]; dup {
				stats.DuplicatesIgnored++
				continue
			}
			r := record
			lookup[k] = &r
		}
		lookups[i] = lookup
	}

	composites := make([]Composite[K], 0, len(anchor))
	seen := make(map[K]struct{}, len(anchor))
	for _, record := range anchor {
		k, ok := key(record)
		if !ok {
			stats.Unkeyed++
			continue
		}
		if _, dup := seen[k]; dup {
			stats.DuplicatesIgnored++
			continue
		}
		seen[k] = struct{}{}

		anchorCopy := record
		byCategory := map[string]*model.MetricRecord{categoryKeys[0]: &anchorCopy}
		for i, category := range categoryKeys[1:] {
			if match, found := lookups[i][k]; found {
				byCategory[category] = match
			}
		}

		composites = append(composites, Composite[K]{
			Key:        k,
			Anchor:     record,
			ByCategory: byCategory,
		})
	}

	// An anchor category that exists but yields no keys at all means the
	// caller picked the wrong selector for this data shape.
	if len(anchor) > 0 && len(composites) == 0 && stats.Unkeyed == len(anchor) {
		return nil, stats, ErrNoJoinKeys
	}

	return composites, stats, nil
}

// ByEntityID selects the record's entity id as join key.
func ByEntityID(r model.MetricRecord) (string, bool) {
	return r.EntityID, r.EntityID != ""
}

// ByRank selects the record's rank as join key, for categories whose
// entities share an ordinal position instead of an id.
func ByRank(r model.MetricRecord) (int64, bool) {
	if r.Rank == nil {
		return 0, false
	}
	return *r.Rank, true
}
