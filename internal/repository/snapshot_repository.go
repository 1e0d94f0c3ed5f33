package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dashboard-api/internal/model"
)

var ErrUnknownReport = errors.New("unknown report")

// Table names are whitelisted here; report identifiers from the request
// path never reach the SQL text directly.
var snapshotTables = map[model.Report]string{
	model.ReportGeography:    "geographic_metrics",
	model.ReportCustomers:    "customer_snapshot",
	model.ReportRequisitions: "requisition_snapshots",
	model.ReportAddons:       "plan_addon_adoption",
	model.ReportInsurance:    "health_insurance_metrics",
}

// SnapshotRepository reads the flat metric rows the nightly snapshot
// jobs write. Every query is pinned to a single snapshot_date, so one
// call never mixes two snapshots.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type snapshotRow struct {
	SnapshotDate       time.Time        `gorm:"column:snapshot_date"`
	MetricType         string           `gorm:"column:metric_type"`
	ID                 string           `gorm:"column:id"`
	Label              string           `gorm:"column:label"`
	Count              *int64           `gorm:"column:count"`
	ValueAUD           *decimal.Decimal `gorm:"column:value_aud"`
	OverallPercentage  *float64         `gorm:"column:overall_percentage"`
	CategoryPercentage *float64         `gorm:"column:category_percentage"`
	ContractCount      *int64           `gorm:"column:contract_count"`
	Rank               *int64           `gorm:"column:rank"`
	IsMultiCountry     *bool            `gorm:"column:is_multi_country"`
}

func (row snapshotRow) toRecord() model.MetricRecord {
	return model.MetricRecord{
		SnapshotDate:       row.SnapshotDate,
		MetricType:         row.MetricType,
		EntityID:           row.ID,
		Label:              row.Label,
		Count:              row.Count,
		ValueAUD:           row.ValueAUD,
		OverallPercentage:  row.OverallPercentage,
		CategoryPercentage: row.CategoryPercentage,
		ContractCount:      row.ContractCount,
		Rank:               row.Rank,
		IsMultiCountry:     row.IsMultiCountry != nil && *row.IsMultiCountry,
	}
}

// LatestSnapshot returns every metric row of the report's most recent
// snapshot. An upstream table that has not been written yet yields an
// empty slice, not an error.
func (r *SnapshotRepository) LatestSnapshot(ctx context.Context, report model.Report) ([]model.MetricRecord, error) {
	table, ok := snapshotTables[report]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, report)
	}

	query := fmt.Sprintf(`
		SELECT snapshot_date, metric_type, id, label, count, value_aud,
		       overall_percentage, category_percentage, contract_count, rank, is_multi_country
		FROM %s
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM %s)
		ORDER BY metric_type, rank NULLS LAST, id`, table, table)

	var rows []snapshotRow
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("latest snapshot for %s: %w", report, err)
	}

	records := make([]model.MetricRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

type seriesRow struct {
	SnapshotDate time.Time       `gorm:"column:snapshot_date"`
	TotalCount   int64           `gorm:"column:total_count"`
	TotalValue   decimal.Decimal `gorm:"column:total_value"`
}

// MonthlySeries returns one point per month for a metric type: the
// report's latest snapshot within each month, counts and money summed
// across that snapshot's rows.
func (r *SnapshotRepository) MonthlySeries(ctx context.Context, report model.Report, metricType string, months int) ([]model.SeriesPoint, error) {
	table, ok := snapshotTables[report]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, report)
	}

	query := fmt.Sprintf(`
		WITH monthly AS (
			SELECT DATE_TRUNC('month', snapshot_date) AS month_start,
			       MAX(snapshot_date) AS latest_snapshot
			FROM %s
			WHERE metric_type = ?
			GROUP BY 1
		)
		SELECT m.latest_snapshot AS snapshot_date,
		       COALESCE(SUM(t.count), 0) AS total_count,
		       COALESCE(SUM(t.value_aud), 0) AS total_value
		FROM %s t
		JOIN monthly m ON t.snapshot_date = m.latest_snapshot
		WHERE t.metric_type = ?
		  AND m.month_start >= DATE_TRUNC('month', (SELECT MAX(snapshot_date) FROM %s)) - (? * INTERVAL '1 month')
		GROUP BY m.latest_snapshot
		ORDER BY m.latest_snapshot`, table, table, table)

	var rows []seriesRow
	if err := r.db.WithContext(ctx).Raw(query, metricType, metricType, months).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("monthly series for %s/%s: %w", report, metricType, err)
	}

	points := make([]model.SeriesPoint, len(rows))
	for i, row := range rows {
		points[i] = model.SeriesPoint{
			Month:    row.SnapshotDate.Format("Jan 2006"),
			Date:     row.SnapshotDate,
			Count:    row.TotalCount,
			ValueAUD: row.TotalValue,
		}
	}
	return points, nil
}

type revenueRow struct {
	SnapshotDate               time.Time       `gorm:"column:snapshot_date"`
	TotalActiveSubscriptions   int64           `gorm:"column:total_active_subscriptions"`
	ApprovedNotStarted         int64           `gorm:"column:approved_not_started"`
	OffboardingContracts       int64           `gorm:"column:offboarding_contracts"`
	TotalContracts             int64           `gorm:"column:total_contracts"`
	RevenueGeneratingContracts int64           `gorm:"column:revenue_generating_contracts"`
	NewSubscriptions           int64           `gorm:"column:new_subscriptions"`
	ChurnedSubscriptions       int64           `gorm:"column:churned_subscriptions"`
	RetentionRate              float64         `gorm:"column:retention_rate"`
	ChurnRate                  float64         `gorm:"column:churn_rate"`
	EORFeesMRR                 decimal.Decimal `gorm:"column:eor_fees_mrr"`
	DeviceFeesMRR              decimal.Decimal `gorm:"column:device_fees_mrr"`
	HardwareFeesMRR            decimal.Decimal `gorm:"column:hardware_fees_mrr"`
	SoftwareFeesMRR            decimal.Decimal `gorm:"column:software_fees_mrr"`
	HealthInsuranceMRR         decimal.Decimal `gorm:"column:health_insurance_mrr"`
	OneTimeFees                decimal.Decimal `gorm:"column:one_time_fees"`
	PlacementFees              decimal.Decimal `gorm:"column:placement_fees"`
	FinalisationFees           decimal.Decimal `gorm:"column:finalisation_fees"`
	TotalMRR                   decimal.Decimal `gorm:"column:total_mrr"`
	TotalMonthlyRevenue        decimal.Decimal `gorm:"column:total_monthly_revenue"`
	TotalARR                   decimal.Decimal `gorm:"column:total_arr"`
	AvgSubscriptionValue       decimal.Decimal `gorm:"column:avg_subscription_value"`
	RecurringRevenuePercentage float64         `gorm:"column:recurring_revenue_percentage"`
	OneTimeRevenuePercentage   float64         `gorm:"column:one_time_revenue_percentage"`
	TotalCustomers             int64           `gorm:"column:total_customers"`
	NewCustomersThisMonth      int64           `gorm:"column:new_customers_this_month"`
	AddonRevenuePercentage     float64         `gorm:"column:addon_revenue_percentage"`
	AvgDaysFromApprovalToStart float64         `gorm:"column:avg_days_from_approval_to_start"`
	AvgDaysUntilStart          float64         `gorm:"column:avg_days_until_start"`
	PlanChangeRate             float64         `gorm:"column:plan_change_rate"`
	LaptopsCount               int64           `gorm:"column:laptops_count"`
}

func (row revenueRow) toSnapshot() *model.RevenueSnapshot {
	return &model.RevenueSnapshot{
		SnapshotDate:               row.SnapshotDate.Format("2006-01-02"),
		TotalActiveSubscriptions:   row.TotalActiveSubscriptions,
		ApprovedNotStarted:         row.ApprovedNotStarted,
		OffboardingContracts:       row.OffboardingContracts,
		TotalContracts:             row.TotalContracts,
		RevenueGeneratingContracts: row.RevenueGeneratingContracts,
		NewSubscriptions:           row.NewSubscriptions,
		ChurnedSubscriptions:       row.ChurnedSubscriptions,
		RetentionRate:              row.RetentionRate,
		ChurnRate:                  row.ChurnRate,
		EORFeesMRR:                 row.EORFeesMRR,
		DeviceFeesMRR:              row.DeviceFeesMRR,
		HardwareFeesMRR:            row.HardwareFeesMRR,
		SoftwareFeesMRR:            row.SoftwareFeesMRR,
		HealthInsuranceMRR:         row.HealthInsuranceMRR,
		OneTimeFees:                row.OneTimeFees,
		PlacementFees:              row.PlacementFees,
		FinalisationFees:           row.FinalisationFees,
		TotalMRR:                   row.TotalMRR,
		TotalMonthlyRevenue:        row.TotalMonthlyRevenue,
		TotalARR:                   row.TotalARR,
		AvgSubscriptionValue:       row.AvgSubscriptionValue,
		RecurringRevenuePercentage: row.RecurringRevenuePercentage,
		OneTimeRevenuePercentage:   row.OneTimeRevenuePercentage,
		TotalCustomers:             row.TotalCustomers,
		NewCustomersThisMonth:      row.NewCustomersThisMonth,
		AddonRevenuePercentage:     row.AddonRevenuePercentage,
		AvgDaysFromApprovalToStart: row.AvgDaysFromApprovalToStart,
		AvgDaysUntilStart:          row.AvgDaysUntilStart,
		PlanChangeRate:             row.PlanChangeRate,
		LaptopsCount:               row.LaptopsCount,
	}
}

// LatestRevenue returns the most recent row of the monthly subscription
// snapshot, which is wide (one row per snapshot) rather than flat. A
// table with no snapshots yet yields nil, not an error.
func (r *SnapshotRepository) LatestRevenue(ctx context.Context) (*model.RevenueSnapshot, error) {
	query := `
		SELECT *
		FROM monthly_subscription_snapshot
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM monthly_subscription_snapshot)`

	var row revenueRow
	result := r.db.WithContext(ctx).Raw(query).Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("latest revenue snapshot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return row.toSnapshot(), nil
}

// Columns of the subscription snapshot a trend can be charted over.
var revenueSeriesColumns = map[string]string{
	"total_mrr":                  "total_mrr",
	"total_active_subscriptions": "total_active_subscriptions",
}

// RevenueSeries returns one point per month for a subscription-snapshot
// column, taking the latest snapshot within each month.
func (r *SnapshotRepository) RevenueSeries(ctx context.Context, column string, months int) ([]model.SeriesPoint, error) {
	col, ok := revenueSeriesColumns[column]
	if !ok {
		return nil, fmt.Errorf("%w: revenue series %s", ErrUnknownReport, column)
	}

	query := fmt.Sprintf(`
		WITH monthly AS (
			SELECT DATE_TRUNC('month', snapshot_date) AS month_start,
			       MAX(snapshot_date) AS latest_snapshot
			FROM monthly_subscription_snapshot
			GROUP BY 1
		)
		SELECT s.snapshot_date,
		       COALESCE(s.%s, 0) AS total_value
		FROM monthly_subscription_snapshot s
		JOIN monthly m ON s.snapshot_date = m.latest_snapshot
		WHERE m.month_start >= DATE_TRUNC('month', (SELECT MAX(snapshot_date) FROM monthly_subscription_snapshot)) - (? * INTERVAL '1 month')
		ORDER BY s.snapshot_date`, col)

	var rows []revenueSeriesRow
	if err := r.db.WithContext(ctx).Raw(query, months).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("revenue series %s: %w", column, err)
	}

	points := make([]model.SeriesPoint, len(rows))
	for i, row := range rows {
		points[i] = model.SeriesPoint{
			Month:    row.SnapshotDate.Format("Jan 2006"),
			Date:     row.SnapshotDate,
			Count:    row.TotalValue.IntPart(),
			ValueAUD: row.TotalValue,
		}
	}
	return points, nil
}

type revenueSeriesRow struct {
	SnapshotDate time.Time       `gorm:"column:snapshot_date"`
	TotalValue   decimal.Decimal `gorm:"column:total_value"`
}

type countryTrendRow struct {
	SnapshotDate time.Time       `gorm:"column:snapshot_date"`
	CountryCode  string          `gorm:"column:country_code"`
	CountryName  string          `gorm:"column:country_name"`
	ActiveCount  int64           `gorm:"column:active_count"`
	MRRValue     decimal.Decimal `gorm:"column:mrr_value"`
}

// CountryTrend returns per-country active-contract counts and MRR for
// every geographic snapshot in the window, newest snapshot first.
func (r *SnapshotRepository) CountryTrend(ctx context.Context, months int) ([]model.CountryTrendSeries, error) {
	query := `
		WITH snapshots AS (
			SELECT DISTINCT snapshot_date
			FROM geographic_metrics
			WHERE snapshot_date >= (SELECT MAX(snapshot_date) FROM geographic_metrics) - (? * INTERVAL '1 month')
		)
		SELECT a.snapshot_date,
		       a.id AS country_code,
		       a.label AS country_name,
		       COALESCE(a.count, 0) AS active_count,
		       COALESCE(m.value_aud, 0) AS mrr_value
		FROM geographic_metrics a
		JOIN snapshots s ON a.snapshot_date = s.snapshot_date
		LEFT JOIN geographic_metrics m
			ON m.snapshot_date = a.snapshot_date
			AND m.id = a.id
			AND m.metric_type = 'mrr_by_country'
		WHERE a.metric_type = 'active_contracts_by_country'
		ORDER BY a.snapshot_date DESC, active_count DESC`

	var rows []countryTrendRow
	if err := r.db.WithContext(ctx).Raw(query, months).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("country trend: %w", err)
	}

	// Group by country, newest-first input keeps the latest point first.
	order := make([]string, 0)
	byCountry := make(map[string]*model.CountryTrendSeries)
	for _, row := range rows {
		series, seen := byCountry[row.CountryCode]
		if !seen {
			series = &model.CountryTrendSeries{
				CountryCode: row.CountryCode,
				CountryName: row.CountryName,
			}
			byCountry[row.CountryCode] = series
			order = append(order, row.CountryCode)
		}
		series.Data = append(series.Data, model.CountryTrendPoint{
			Date:        row.SnapshotDate,
			Month:       row.SnapshotDate.Format("Jan 2006"),
			ActiveCount: row.ActiveCount,
			MRRValue:    row.MRRValue,
		})
	}

	result := make([]model.CountryTrendSeries, 0, len(order))
	for _, code := range order {
		series := byCountry[code]
		// Points arrive newest first; reports chart oldest to newest.
		for i, j := 0, len(series.Data)-1; i < j; i, j = i+1, j-1 {
			series.Data[i], series.Data[j] = series.Data[j], series.Data[i]
		}
		result = append(result, *series)
	}
	return result, nil
}
