package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"dashboard-api/internal/aggregate"
	"dashboard-api/internal/model"
)

var header = []interface{}{
	"snapshot_date", "metric_type", "id", "label", "count",
	"value_aud", "overall_percentage", "category_percentage", "contract_count", "rank",
}

// Workbook renders one snapshot as an xlsx workbook, one sheet per
// metric category, rows in snapshot order.
func Workbook(report model.Report, records []model.MetricRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	groups := aggregate.Group(records)
	keys := groups.Keys()
	if len(keys) == 0 {
		keys = []string{string(report)}
	}

	for i, key := range keys {
		sheet := sheetName(key)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, fmt.Errorf("write header on %s: %w", sheet, err)
		}

		for rowIdx, record := range groups.Records(key) {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			row := recordRow(record)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, fmt.Errorf("write row on %s: %w", sheet, err)
			}
		}
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func recordRow(r model.MetricRecord) []interface{} {
	row := []interface{}{
		r.SnapshotDate.Format("2006-01-02"),
		r.MetricType,
		r.EntityID,
		r.Label,
	}
	row = append(row, nullableInt(r.Count))
	if r.ValueAUD != nil {
		row = append(row, r.ValueAUD.InexactFloat64())
	} else {
		row = append(row, nil)
	}
	row = append(row, nullableFloat(r.OverallPercentage))
	row = append(row, nullableFloat(r.CategoryPercentage))
	row = append(row, nullableInt(r.ContractCount))
	row = append(row, nullableInt(r.Rank))
	return row
}

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// Excel caps sheet names at 31 characters and rejects a handful of
// special characters.
func sheetName(metricType string) string {
	name := strings.NewReplacer("/", "-", "\\", "-", "*", "-", "?", "-", "[", "(", "]", ")", ":", "-").Replace(metricType)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
