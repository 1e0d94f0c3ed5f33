package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"dashboard-api/internal/aggregate"
	"dashboard-api/internal/model"
)

const (
	metricActiveContracts    = "active_contracts_by_country"
	metricOffboarding        = "offboarding_contracts_by_country"
	metricApprovedNotStarted = "approved_not_started_by_country"
	metricMRR                = "mrr_by_country"
	metricARR                = "arr_by_country"
)

var geographyCategories = []string{
	metricActiveContracts,
	metricOffboarding,
	metricApprovedNotStarted,
	metricMRR,
	metricARR,
}

// Geography builds the per-country report: one composite entity per
// country with all metrics attached, shares recomputed from the raw
// counts and money totals, sorted by active contracts descending.
func (s *ReportService) Geography(ctx context.Context) (*model.GeographyReport, error) {
	records, err := s.fetch(ctx, model.ReportGeography)
	if err != nil {
		return nil, err
	}

	groups := aggregate.Group(records)
	composites, stats, err := aggregate.JoinByKey(groups, geographyCategories, aggregate.ByEntityID)
	if err != nil {
		return nil, err
	}
	if stats.DuplicatesIgnored > 0 {
		s.log.Warn().Int("duplicates", stats.DuplicatesIgnored).Msg("duplicate country rows in geographic snapshot")
	}

	totals := model.GeographyTotals{MRR: decimal.Zero, ARR: decimal.Zero}
	for _, c := range composites {
		totals.ActiveContracts += c.Anchor.CountValue()
		if r := c.Record(metricOffboarding); r != nil {
			totals.OffboardingContracts += r.CountValue()
		}
		if r := c.Record(metricApprovedNotStarted); r != nil {
			totals.ApprovedNotStarted += r.CountValue()
		}
		if r := c.Record(metricMRR); r != nil {
			totals.MRR = totals.MRR.Add(r.MoneyValue())
		}
		if r := c.Record(metricARR); r != nil {
			totals.ARR = totals.ARR.Add(r.MoneyValue())
		}
	}

	activeTotal := float64(totals.ActiveContracts)
	mrrTotal := totals.MRR.InexactFloat64()
	arrTotal := totals.ARR.InexactFloat64()

	countries := make([]model.CountryMetrics, 0, len(composites))
	for _, c := range composites {
		metrics := make(map[string]model.MetricCell, len(geographyCategories))
		for _, category := range geographyCategories {
			record := c.Record(category)
			if record == nil {
				continue
			}
			cell := model.MetricCell{Count: record.Count, ValueAUD: record.ValueAUD}
			switch category {
			case metricActiveContracts:
				cell.Percentage = aggregate.PercentageOfTotal(record.CountAsFloat(), &activeTotal)
			case metricMRR:
				cell.Percentage = aggregate.PercentageOfTotal(record.MoneyAsFloat(), &mrrTotal)
			case metricARR:
				cell.Percentage = aggregate.PercentageOfTotal(record.MoneyAsFloat(), &arrTotal)
			default:
				cell.Percentage = aggregate.ClampPercentage(record.OverallPercentage)
			}
			metrics[strings.TrimSuffix(category, "_by_country")] = cell
		}
		countries = append(countries, model.CountryMetrics{
			ID:      c.Key,
			Name:    c.Anchor.Label,
			Metrics: metrics,
		})
	}

	countries = aggregate.TopN(countries, -1,
		func(c model.CountryMetrics) float64 {
			if cell, ok := c.Metrics["active_contracts"]; ok && cell.Count != nil {
				return float64(*cell.Count)
			}
			return 0
		},
		func(c model.CountryMetrics) int64 { return 0 },
	)

	return &model.GeographyReport{
		SnapshotDate: snapshotDate(records),
		Countries:    countries,
		Totals:       totals,
	}, nil
}

// GeographyTrend returns per-country monthly series, countries ordered
// by their latest active-contract count.
func (s *ReportService) GeographyTrend(ctx context.Context, months int) ([]model.CountryTrendSeries, error) {
	series, err := s.snapshots.CountryTrend(ctx, s.normalizeMonths(months))
	if err != nil {
		return nil, err
	}

	return aggregate.TopN(series, -1,
		func(c model.CountryTrendSeries) float64 {
			if len(c.Data) == 0 {
				return 0
			}
			return float64(c.Data[len(c.Data)-1].ActiveCount)
		},
		func(c model.CountryTrendSeries) int64 { return int64(len(c.Data)) },
	), nil
}
