package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"dashboard-api/internal/model"
	"dashboard-api/internal/repository"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// SnapshotSource is the fetch collaborator: it delivers one consistent
// snapshot of metric rows per call. The engines never touch the network
// or the database themselves.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context, report model.Report) ([]model.MetricRecord, error)
	MonthlySeries(ctx context.Context, report model.Report, metricType string, months int) ([]model.SeriesPoint, error)
	CountryTrend(ctx context.Context, months int) ([]model.CountryTrendSeries, error)
	LatestRevenue(ctx context.Context) (*model.RevenueSnapshot, error)
	RevenueSeries(ctx context.Context, column string, months int) ([]model.SeriesPoint, error)
}

// ReportService holds the report adapters: the only code that knows a
// specific report's metric vocabulary. All math happens in the
// aggregate package.
type ReportService struct {
	snapshots          SnapshotSource
	log                zerolog.Logger
	defaultTrendMonths int
	maxTrendMonths     int
	defaultTopN        int
}

func NewReportService(snapshots SnapshotSource, log zerolog.Logger, defaultTrendMonths, maxTrendMonths, defaultTopN int) *ReportService {
	return &ReportService{
		snapshots:          snapshots,
		log:                log,
		defaultTrendMonths: defaultTrendMonths,
		maxTrendMonths:     maxTrendMonths,
		defaultTopN:        defaultTopN,
	}
}

func (s *ReportService) normalizeMonths(months int) int {
	if months <= 0 {
		return s.defaultTrendMonths
	}
	if months > s.maxTrendMonths {
		return s.maxTrendMonths
	}
	return months
}

func (s *ReportService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.defaultTopN
	}
	return limit
}

func (s *ReportService) fetch(ctx context.Context, report model.Report) ([]model.MetricRecord, error) {
	records, err := s.snapshots.LatestSnapshot(ctx, report)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownReport) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return records, nil
}

func snapshotDate(records []model.MetricRecord) string {
	if len(records) == 0 {
		return ""
	}
	return records[0].SnapshotDate.Format("2006-01-02")
}
