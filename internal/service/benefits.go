package service

import (
	"context"

	"github.com/samber/lo"

	"dashboard-api/internal/aggregate"
	"dashboard-api/internal/model"
)

const (
	metricInsurancePlan      = "health_insurance_plan"
	metricInsuranceByCountry = "health_insurance_by_country"
	metricHasInsurance       = "has_health_insurance"
)

// Insurance builds the health-insurance report. Plan rows carry the
// country in a label suffix ("Premium Plan (PH)"); the cross table
// collapses them into one entity per plan with a per-country breakdown
// and flags plans offered in more than one country.
func (s *ReportService) Insurance(ctx context.Context) (*model.InsuranceReport, error) {
	records, err := s.fetch(ctx, model.ReportInsurance)
	if err != nil {
		return nil, err
	}

	groups := aggregate.Group(records)

	plans, stats := aggregate.BuildCrossTable(groups.Records(metricInsurancePlan))
	if stats.UnknownDimensionRows > 0 {
		s.log.Warn().
			Int("rows", stats.UnknownDimensionRows).
			Msg("insurance plan rows without country suffix")
	}

	// Per-country shares are computed against that country's insured
	// contracts, never against the cross-plan total.
	countryRows := groups.Records(metricInsuranceByCountry)
	denominators := make(map[string]float64, len(countryRows))
	for _, row := range countryRows {
		denominators[row.EntityID] = float64(row.ContractsValue())
	}
	plans = aggregate.WithDimensionShares(plans, denominators)

	var insured int64
	if row, ok := groups.First(metricHasInsurance); ok {
		insured = row.CountValue()
	}
	insuredFloat := float64(insured)

	countries := lo.Map(countryRows, func(row model.MetricRecord, _ int) model.CountrySlice {
		return model.CountrySlice{
			Country: row.EntityID,
			Count:   row.CountValue(),
			Share:   aggregate.PercentageOfTotal(row.CountAsFloat(), &insuredFloat),
		}
	})
	countries = aggregate.SortLexical(countries, func(c model.CountrySlice) string { return c.Country })

	return &model.InsuranceReport{
		SnapshotDate: snapshotDate(records),
		Plans:        plans,
		MultiCountryPlans: lo.Filter(plans, func(p model.DimensionalEntity, _ int) bool {
			return p.SpansMultipleCountries
		}),
		Countries:        countries,
		InsuredContracts: insured,
		UnknownRows:      stats.UnknownDimensionRows,
	}, nil
}

const (
	metricCountry         = "country"
	metricDevice          = "device"
	metricHardwareAddon   = "hardware_addon"
	metricSoftwareAddon   = "software_addon"
	metricMembershipAddon = "membership_addon"
)

// Addons builds the add-on adoption report: hardware, software and
// membership add-ons cross-tabulated per country, plus device adoption
// with shares recomputed against the device total.
func (s *ReportService) Addons(ctx context.Context) (*model.AddonsReport, error) {
	records, err := s.fetch(ctx, model.ReportAddons)
	if err != nil {
		return nil, err
	}

	groups := aggregate.Group(records)

	// Add-on ids repeat across categories, so each category is
	// cross-tabulated on its own.
	addons, stats := aggregate.BuildCrossTables(
		groups.Records(metricHardwareAddon),
		groups.Records(metricSoftwareAddon),
		groups.Records(metricMembershipAddon),
	)
	if stats.UnknownDimensionRows > 0 {
		s.log.Warn().
			Int("rows", stats.UnknownDimensionRows).
			Msg("add-on rows without country suffix")
	}

	// Adoption shares divide contracts with the add-on by the country's
	// contracts, not by units sold.
	countryRows := groups.Records(metricCountry)
	denominators := make(map[string]float64, len(countryRows))
	for _, row := range countryRows {
		denominators[row.EntityID] = float64(row.ContractsValue())
	}
	addons = aggregate.WithDimensionShares(addons, denominators)

	deviceRows := groups.Records(metricDevice)
	deviceTotal := float64(lo.SumBy(deviceRows, model.MetricRecord.CountValue))
	devices := lo.Map(deviceRows, func(row model.MetricRecord, _ int) model.MetricCard {
		return model.MetricCard{
			MetricType: metricDevice,
			Label:      row.Label,
			Count:      row.Count,
			ValueAUD:   row.ValueAUD,
			Percentage: aggregate.PercentageOfTotal(row.CountAsFloat(), &deviceTotal),
		}
	})
	devices = aggregate.TopN(devices, -1,
		func(c model.MetricCard) float64 { return c.Percentage },
		func(c model.MetricCard) int64 {
			if c.Count == nil {
				return 0
			}
			return *c.Count
		},
	)

	return &model.AddonsReport{
		SnapshotDate: snapshotDate(records),
		Addons:       addons,
		MultiCountryAddons: lo.Filter(addons, func(a model.DimensionalEntity, _ int) bool {
			return a.SpansMultipleCountries
		}),
		Devices:     devices,
		UnknownRows: stats.UnknownDimensionRows,
	}, nil
}
