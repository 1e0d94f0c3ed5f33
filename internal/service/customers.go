package service

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"dashboard-api/internal/aggregate"
	"dashboard-api/internal/model"
)

const (
	metricTopCustomerByARR = "top_customer_by_arr"
	metricTopIndustryCount = "top_industry_by_count"
	metricTopIndustryARR   = "top_industry_by_arr"
	metricSizeDistribution = "company_size_distribution"
	metricSizeARR          = "company_size_arr"
	metricSizeAvgARR       = "company_size_avg_arr"
	metricActiveCustomers  = "active_customers"
)

// rankedCategories never surface as overview cards.
var rankedCustomerCategories = map[string]struct{}{
	metricTopCustomerByARR: {},
	metricTopIndustryCount: {},
	metricTopIndustryARR:   {},
	metricSizeDistribution: {},
	metricSizeARR:          {},
	metricSizeAvgARR:       {},
}

// CustomerOverview returns the headline cards: every single-entity
// category of the customer snapshot (total customers, ARR, churn and so
// on), in snapshot order.
func (s *ReportService) CustomerOverview(ctx context.Context) (*model.CustomerOverview, error) {
	records, err := s.fetch(ctx, model.ReportCustomers)
	if err != nil {
		return nil, err
	}

	groups := aggregate.Group(records)

	cards := make([]model.MetricCard, 0, len(groups.Keys()))
	for _, key := range groups.Keys() {
		if _, ranked := rankedCustomerCategories[key]; ranked {
			continue
		}
		record, ok := groups.First(key)
		if !ok {
			continue
		}
		cards = append(cards, model.MetricCard{
			MetricType: key,
			Label:      record.Label,
			Count:      record.Count,
			ValueAUD:   record.ValueAUD,
			Percentage: aggregate.ClampPercentage(record.OverallPercentage),
		})
	}

	return &model.CustomerOverview{
		SnapshotDate: snapshotDate(records),
		Cards:        cards,
	}, nil
}

// CustomerTrend is the monthly active-customers series.
func (s *ReportService) CustomerTrend(ctx context.Context, months int) ([]model.SeriesPoint, error) {
	return s.snapshots.MonthlySeries(ctx, model.ReportCustomers, metricActiveCustomers, s.normalizeMonths(months))
}

// TopCustomers ranks customers by ARR. The upstream rank column is not
// trusted; order and share are recomputed from the snapshot's values.
func (s *ReportService) TopCustomers(ctx context.Context, limit int) ([]model.TopCustomer, error) {
	records, err := s.fetch(ctx, model.ReportCustomers)
	if err != nil {
		return nil, err
	}

	rows := aggregate.Group(records).Records(metricTopCustomerByARR)

	totalARR := lo.Reduce(rows, func(sum decimal.Decimal, r model.MetricRecord, _ int) decimal.Decimal {
		return sum.Add(r.MoneyValue())
	}, decimal.Zero)
	totalARRFloat := totalARR.InexactFloat64()

	ranked := aggregate.RankAndSort(rows,
		func(r model.MetricRecord) float64 { return r.MoneyValue().InexactFloat64() },
		func(r model.MetricRecord) int64 { return r.CountValue() },
	)
	if limit = s.normalizeLimit(limit); len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return lo.Map(ranked, func(r aggregate.Ranked[model.MetricRecord], _ int) model.TopCustomer {
		return model.TopCustomer{
			Rank:            int64(r.Position + 1),
			CompanyID:       r.Item.EntityID,
			Label:           r.Item.Label,
			ActiveContracts: r.Item.CountValue(),
			ARR:             r.Item.MoneyValue(),
			ARRShare:        aggregate.PercentageOfTotal(r.Item.MoneyAsFloat(), &totalARRFloat),
		}
	}), nil
}

// CompanySizes joins the three size categories by rank: the same size
// band is described by a distribution row, an ARR row and an average
// ARR row sharing an ordinal position rather than an id.
func (s *ReportService) CompanySizes(ctx context.Context) ([]model.CompanySizeBucket, error) {
	records, err := s.fetch(ctx, model.ReportCustomers)
	if err != nil {
		return nil, err
	}

	groups := aggregate.Group(records)
	composites, stats, err := aggregate.JoinByKey(groups,
		[]string{metricSizeDistribution, metricSizeARR, metricSizeAvgARR},
		aggregate.ByRank,
	)
	if err != nil {
		return nil, err
	}
	if stats.DuplicatesIgnored > 0 || stats.Unkeyed > 0 {
		s.log.Warn().
			Int("duplicates", stats.DuplicatesIgnored).
			Int("unkeyed", stats.Unkeyed).
			Msg("inconsistent company size rows in customer snapshot")
	}

	totalCustomers := float64(lo.SumBy(composites, func(c aggregate.Composite[int64]) int64 {
		return c.Anchor.CountValue()
	}))

	buckets := make([]model.CompanySizeBucket, 0, len(composites))
	for _, c := range composites {
		bucket := model.CompanySizeBucket{
			Rank:      c.Key,
			ID:        c.Anchor.EntityID,
			Label:     c.Anchor.Label,
			Customers: c.Anchor.CountValue(),
			Share:     aggregate.PercentageOfTotal(c.Anchor.CountAsFloat(), &totalCustomers),
			ARR:       decimal.Zero,
			AvgARR:    decimal.Zero,
		}
		if r := c.Record(metricSizeARR); r != nil {
			bucket.ARR = r.MoneyValue()
		}
		if r := c.Record(metricSizeAvgARR); r != nil {
			bucket.AvgARR = r.MoneyValue()
		} else if bucket.Customers > 0 {
			// Average row missing upstream; derive it.
			bucket.AvgARR = bucket.ARR.DivRound(decimal.NewFromInt(bucket.Customers), 2)
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// Industries returns the top industries by customer count or by ARR.
func (s *ReportService) Industries(ctx context.Context, by string, limit int) ([]model.IndustryMetric, error) {
	var metricType string
	var measure func(model.MetricRecord) float64
	switch by {
	case "", "count":
		metricType = metricTopIndustryCount
		measure = func(r model.MetricRecord) float64 { return float64(r.CountValue()) }
	case "arr":
		metricType = metricTopIndustryARR
		measure = func(r model.MetricRecord) float64 { return r.MoneyValue().InexactFloat64() }
	default:
		return nil, ErrInvalidArgument
	}

	records, err := s.fetch(ctx, model.ReportCustomers)
	if err != nil {
		return nil, err
	}

	rows := aggregate.Group(records).Records(metricType)

	totalCount := float64(lo.SumBy(rows, model.MetricRecord.CountValue))

	ranked := aggregate.RankAndSort(rows, measure, model.MetricRecord.CountValue)
	if limit = s.normalizeLimit(limit); len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return lo.Map(ranked, func(r aggregate.Ranked[model.MetricRecord], _ int) model.IndustryMetric {
		return model.IndustryMetric{
			Rank:  int64(r.Position + 1),
			ID:    r.Item.EntityID,
			Label: r.Item.Label,
			Count: r.Item.CountValue(),
			ARR:   r.Item.MoneyValue(),
			Share: aggregate.PercentageOfTotal(r.Item.CountAsFloat(), &totalCount),
		}
	}), nil
}
