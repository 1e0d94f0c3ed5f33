package aggregate

import (
	"sort"
	"strings"
)

// PercentageOfTotal computes part/whole as a percentage. Division is
// always zero-guarded: a nil part, or a nil, zero or negative whole,
// yields 0. The result is never NaN or Inf.
func PercentageOfTotal(part, whole *float64) float64 {
	if part == nil || whole == nil || *whole <= 0 {
		return 0
	}
	return *part / *whole * 100
}

// Average computes total/divisor with the same zero-guard policy as
// PercentageOfTotal.
func Average(total, divisor *float64) float64 {
	if total == nil || divisor == nil || *divisor <= 0 {
		return 0
	}
	return *total / *divisor
}

// ClampPercentage normalizes an upstream-provided percentage into
// [0,100]. Upstream values are not trusted to be present or
// self-consistent.
func ClampPercentage(p *float64) float64 {
	if p == nil {
		return 0
	}
	switch {
	case *p < 0:
		return 0
	case *p > 100:
		return 100
	default:
		return *p
	}
}

// TopN returns the n largest items by key, descending. Ties are broken
// by count descending; items still tied keep their original relative
// order. Several reports display "the top item", so this ordering must
// stay deterministic.
func TopN[E any](items []E, n int, key func(E) float64, count func(E) int64) []E {
	sorted := make([]E, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := key(sorted[i]), key(sorted[j])
		if ki != kj {
			return ki > kj
		}
		return count(sorted[i]) > count(sorted[j])
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Ranked pairs an item with its zero-indexed position after sorting.
type Ranked[E any] struct {
	Position int
	Item     E
}

// RankAndSort sorts items descending by the primary measure (count
// ties, then stable) and assigns each a zero-indexed position.
func RankAndSort[E any](items []E, measure func(E) float64, count func(E) int64) []Ranked[E] {
	sorted := TopN(items, -1, measure, count)
	ranked := make([]Ranked[E], len(sorted))
	for i, item := range sorted {
		ranked[i] = Ranked[E]{Position: i, Item: item}
	}
	return ranked
}

// SortLexical orders items ascending by name, case-insensitively. Used
// for the listings that are explicitly alphabetical (e.g. a per-country
// table) rather than measure-ranked.
func SortLexical[E any](items []E, name func(E) string) []E {
	sorted := make([]E, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(name(sorted[i])) < strings.ToLower(name(sorted[j]))
	})
	return sorted
}
