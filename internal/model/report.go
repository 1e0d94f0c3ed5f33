package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report names the snapshot domain a request is about. Each report is
// backed by its own snapshot table.
type Report string

const (
	ReportGeography    Report = "geography"
	ReportCustomers    Report = "customers"
	ReportRequisitions Report = "requisitions"
	ReportAddons       Report = "addons"
	ReportInsurance    Report = "insurance"
	ReportRevenue      Report = "revenue"
)

// MetricCell is one metric of a country in a per-country report view.
type MetricCell struct {
	Count      *int64           `json:"count"`
	ValueAUD   *decimal.Decimal `json:"value_aud"`
	Percentage float64          `json:"percentage"`
}

// CountryMetrics bundles all metrics of a single country.
type CountryMetrics struct {
	ID      string                `json:"id"`
	Name    string                `json:"name"`
	Metrics map[string]MetricCell `json:"metrics"`
}

type GeographyTotals struct {
	ActiveContracts      int64           `json:"active_contracts"`
	OffboardingContracts int64           `json:"offboarding_contracts"`
	ApprovedNotStarted   int64           `json:"approved_not_started"`
	MRR                  decimal.Decimal `json:"mrr"`
	ARR                  decimal.Decimal `json:"arr"`
}

type GeographyReport struct {
	SnapshotDate string           `json:"snapshot_date"`
	Countries    []CountryMetrics `json:"countries"`
	Totals       GeographyTotals  `json:"totals"`
}

// SeriesPoint is one bucket of a monthly trend.
type SeriesPoint struct {
	Month    string          `json:"month"`
	Date     time.Time       `json:"date"`
	Count    int64           `json:"count"`
	ValueAUD decimal.Decimal `json:"value_aud"`
}

type CountryTrendPoint struct {
	Date        time.Time       `json:"date"`
	Month       string          `json:"month"`
	ActiveCount int64           `json:"active_count"`
	MRRValue    decimal.Decimal `json:"mrr_value"`
}

type CountryTrendSeries struct {
	CountryCode string              `json:"country_code"`
	CountryName string              `json:"country_name"`
	Data        []CountryTrendPoint `json:"data"`
}

type RequisitionTotals struct {
	ApprovedRequisitions int64           `json:"approved_requisitions"`
	ApprovedPositions    int64           `json:"approved_positions"`
	RejectedRequisitions int64           `json:"rejected_requisitions"`
	OpenPositions        int64           `json:"open_positions"`
	MRR                  decimal.Decimal `json:"mrr"`
	ARR                  decimal.Decimal `json:"arr"`
	PlacementFees        decimal.Decimal `json:"placement_fees"`
}

type RequisitionReport struct {
	SnapshotMonth string            `json:"snapshot_month"`
	Countries     []CountryMetrics  `json:"countries"`
	Totals        RequisitionTotals `json:"totals"`
}

// MetricCard is a single-entity headline metric (e.g. active customers).
type MetricCard struct {
	MetricType string           `json:"metric_type"`
	Label      string           `json:"label"`
	Count      *int64           `json:"count"`
	ValueAUD   *decimal.Decimal `json:"value_aud"`
	Percentage float64          `json:"percentage"`
}

type CustomerOverview struct {
	SnapshotDate string       `json:"snapshot_date"`
	Cards        []MetricCard `json:"cards"`
}

type TopCustomer struct {
	Rank            int64           `json:"rank"`
	CompanyID       string          `json:"company_id"`
	Label           string          `json:"label"`
	ActiveContracts int64           `json:"active_contracts"`
	ARR             decimal.Decimal `json:"arr"`
	ARRShare        float64         `json:"arr_share"`
}

// CompanySizeBucket is one size band joined across its distribution,
// ARR and average-ARR categories.
type CompanySizeBucket struct {
	Rank      int64           `json:"rank"`
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Customers int64           `json:"customers"`
	Share     float64         `json:"share"`
	ARR       decimal.Decimal `json:"arr"`
	AvgARR    decimal.Decimal `json:"avg_arr"`
}

type IndustryMetric struct {
	Rank  int64           `json:"rank"`
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Count int64           `json:"count"`
	ARR   decimal.Decimal `json:"arr"`
	Share float64         `json:"share"`
}

// CountrySlice is one country's share of a cross-tabulated category.
type CountrySlice struct {
	Country string  `json:"country"`
	Count   int64   `json:"count"`
	Share   float64 `json:"share"`
}

type InsuranceReport struct {
	SnapshotDate      string              `json:"snapshot_date"`
	Plans             []DimensionalEntity `json:"plans"`
	MultiCountryPlans []DimensionalEntity `json:"multi_country_plans"`
	Countries         []CountrySlice      `json:"countries"`
	InsuredContracts  int64               `json:"insured_contracts"`
	UnknownRows       int                 `json:"unknown_rows"`
}

// RevenueSnapshot is the monthly subscription snapshot: unlike the
// other snapshot tables it is wide, one row per snapshot_date, so it
// bypasses the MetricRecord pipeline.
type RevenueSnapshot struct {
	SnapshotDate               string          `json:"snapshot_date"`
	TotalActiveSubscriptions   int64           `json:"total_active_subscriptions"`
	ApprovedNotStarted         int64           `json:"approved_not_started"`
	OffboardingContracts       int64           `json:"offboarding_contracts"`
	TotalContracts             int64           `json:"total_contracts"`
	RevenueGeneratingContracts int64           `json:"revenue_generating_contracts"`
	NewSubscriptions           int64           `json:"new_subscriptions"`
	ChurnedSubscriptions       int64           `json:"churned_subscriptions"`
	RetentionRate              float64         `json:"retention_rate"`
	ChurnRate                  float64         `json:"churn_rate"`
	EORFeesMRR                 decimal.Decimal `json:"eor_fees_mrr"`
	DeviceFeesMRR              decimal.Decimal `json:"device_fees_mrr"`
	HardwareFeesMRR            decimal.Decimal `json:"hardware_fees_mrr"`
	SoftwareFeesMRR            decimal.Decimal `json:"software_fees_mrr"`
	HealthInsuranceMRR         decimal.Decimal `json:"health_insurance_mrr"`
	OneTimeFees                decimal.Decimal `json:"one_time_fees"`
	PlacementFees              decimal.Decimal `json:"placement_fees"`
	FinalisationFees           decimal.Decimal `json:"finalisation_fees"`
	TotalMRR                   decimal.Decimal `json:"total_mrr"`
	TotalMonthlyRevenue        decimal.Decimal `json:"total_monthly_revenue"`
	TotalARR                   decimal.Decimal `json:"total_arr"`
	AvgSubscriptionValue       decimal.Decimal `json:"avg_subscription_value"`
	RecurringRevenuePercentage float64         `json:"recurring_revenue_percentage"`
	OneTimeRevenuePercentage   float64         `json:"one_time_revenue_percentage"`
	TotalCustomers             int64           `json:"total_customers"`
	NewCustomersThisMonth      int64           `json:"new_customers_this_month"`
	AddonRevenuePercentage     float64         `json:"addon_revenue_percentage"`
	AvgDaysFromApprovalToStart float64         `json:"avg_days_from_approval_to_start"`
	AvgDaysUntilStart          float64         `json:"avg_days_until_start"`
	PlanChangeRate             float64         `json:"plan_change_rate"`
	LaptopsCount               int64           `json:"laptops_count"`
}

type AddonsReport struct {
	SnapshotDate       string              `json:"snapshot_date"`
	Addons             []DimensionalEntity `json:"addons"`
	MultiCountryAddons []DimensionalEntity `json:"multi_country_addons"`
	Devices            []MetricCard        `json:"devices"`
	UnknownRows        int                 `json:"unknown_rows"`
}
