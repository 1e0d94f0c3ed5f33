package service

import (
	"context"
	"fmt"

	"dashboard-api/internal/export"
	"dashboard-api/internal/model"
)

// Export renders the report's latest snapshot as an xlsx workbook.
// Admin only.
func (s *ReportService) Export(ctx context.Context, principal model.Principal, report model.Report) ([]byte, string, error) {
	if !principal.CanExport() {
		return nil, "", ErrPermissionDenied
	}

	records, err := s.fetch(ctx, report)
	if err != nil {
		return nil, "", err
	}

	workbook, err := export.Workbook(report, records)
	if err != nil {
		return nil, "", fmt.Errorf("export %s: %w", report, err)
	}

	date := snapshotDate(records)
	if date == "" {
		date = "empty"
	}
	filename := fmt.Sprintf("%s_snapshot_%s.xlsx", report, date)

	s.log.Info().
		Str("report", string(report)).
		Str("user", principal.UserID.String()).
		Int("rows", len(records)).
		Msg("snapshot exported")

	return workbook, filename, nil
}
