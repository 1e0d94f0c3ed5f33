package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"dashboard-api/internal/aggregate"
	"dashboard-api/internal/model"
)

var requisitionCategories = []string{
	"approved_requisitions",
	"approved_positions",
	"rejected_requisitions",
	"open_positions",
	"mrr_aud",
	"arr_aud",
	"placement_fees_aud",
}

// Requisitions builds the per-country requisition report plus grand
// totals across all countries.
func (s *ReportService) Requisitions(ctx context.Context) (*model.RequisitionReport, error) {
	records, err := s.fetch(ctx, model.ReportRequisitions)
	if err != nil {
		return nil, err
	}

	groups := aggregate.Group(records)
	composites, stats, err := aggregate.JoinByKey(groups, requisitionCategories, aggregate.ByEntityID)
	if err != nil {
		return nil, err
	}
	if stats.DuplicatesIgnored > 0 {
		s.log.Warn().Int("duplicates", stats.DuplicatesIgnored).Msg("duplicate country rows in requisition snapshot")
	}

	totals := model.RequisitionTotals{
		MRR:           decimal.Zero,
		ARR:           decimal.Zero,
		PlacementFees: decimal.Zero,
	}

	countries := make([]model.CountryMetrics, 0, len(composites))
	for _, c := range composites {
		metrics := make(map[string]model.MetricCell, len(requisitionCategories))
		for _, category := range requisitionCategories {
			record := c.Record(category)
			if record == nil {
				continue
			}
			// Revenue categories carry the _aud suffix on the wire;
			// the report view drops it.
			metrics[strings.TrimSuffix(category, "_aud")] = model.MetricCell{
				Count:      record.Count,
				ValueAUD:   record.ValueAUD,
				Percentage: aggregate.ClampPercentage(record.OverallPercentage),
			}

			switch category {
			case "approved_requisitions":
				totals.ApprovedRequisitions += record.CountValue()
			case "approved_positions":
				totals.ApprovedPositions += record.CountValue()
			case "rejected_requisitions":
				totals.RejectedRequisitions += record.CountValue()
			case "open_positions":
				totals.OpenPositions += record.CountValue()
			case "mrr_aud":
				totals.MRR = totals.MRR.Add(record.MoneyValue())
			case "arr_aud":
				totals.ARR = totals.ARR.Add(record.MoneyValue())
			case "placement_fees_aud":
				totals.PlacementFees = totals.PlacementFees.Add(record.MoneyValue())
			}
		}
		countries = append(countries, model.CountryMetrics{
			ID:      c.Key,
			Name:    c.Anchor.Label,
			Metrics: metrics,
		})
	}

	countries = aggregate.SortLexical(countries, func(c model.CountryMetrics) string { return c.Name })

	snapshotMonth := ""
	if len(records) > 0 {
		snapshotMonth = records[0].SnapshotDate.Format("2006-01")
	}

	return &model.RequisitionReport{
		SnapshotMonth: snapshotMonth,
		Countries:     countries,
		Totals:        totals,
	}, nil
}

// RequisitionTrend is the monthly approved-positions series.
func (s *ReportService) RequisitionTrend(ctx context.Context, months int) ([]model.SeriesPoint, error) {
	return s.snapshots.MonthlySeries(ctx, model.ReportRequisitions, "approved_positions", s.normalizeMonths(months))
}
