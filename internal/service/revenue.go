package service

import (
	"context"

	"dashboard-api/internal/aggregate"
	"dashboard-api/internal/model"
)

const (
	revenueColumnMRR           = "total_mrr"
	revenueColumnSubscriptions = "total_active_subscriptions"
)

// Revenue returns the latest subscription snapshot. The table is wide,
// one row per snapshot, so the row passes through as-is; only its
// percentage columns are clamped like every other upstream percentage.
func (s *ReportService) Revenue(ctx context.Context) (*model.RevenueSnapshot, error) {
	snapshot, err := s.snapshots.LatestRevenue(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrNotFound
	}

	for _, p := range []*float64{
		&snapshot.RetentionRate,
		&snapshot.ChurnRate,
		&snapshot.RecurringRevenuePercentage,
		&snapshot.OneTimeRevenuePercentage,
		&snapshot.AddonRevenuePercentage,
	} {
		*p = aggregate.ClampPercentage(p)
	}

	return snapshot, nil
}

// RevenueTrend is the monthly total-MRR series.
func (s *ReportService) RevenueTrend(ctx context.Context, months int) ([]model.SeriesPoint, error) {
	return s.snapshots.RevenueSeries(ctx, revenueColumnMRR, s.normalizeMonths(months))
}

// SubscriptionTrend is the monthly active-subscriptions series.
func (s *ReportService) SubscriptionTrend(ctx context.Context, months int) ([]model.SeriesPoint, error) {
	return s.snapshots.RevenueSeries(ctx, revenueColumnSubscriptions, s.normalizeMonths(months))
}
