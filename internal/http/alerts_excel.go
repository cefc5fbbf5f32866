package httpapi

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rodrigomarcelo643/Sentinel-PH-sub000/internal/domain"

	"github.com/xuri/excelize/v2"
)

const alertsSheet = "Alerts"

// AlertsExportHeader export columns.
var AlertsExportHeader = []string{
	"Alert ID",
	"Created At",
	"Barangay",
	"Category",
	"Severity",
	"Status",
	"Sentinels",
	"Observations",
	"Sentinel IDs",
	"Observation IDs",
}

var alertsColumnWidths = []float64{38, 20, 20, 16, 10, 10, 10, 12, 50, 50}

// GenerateAlertsExport builds an XLSX workbook with one row per alert.
func GenerateAlertsExport(alerts []*domain.Alert) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(alertsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDE9E7"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range AlertsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(alertsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(alertsSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(alertsSheet, name, name, alertsColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, a := range alerts {
		row := []any{
			a.ID,
			a.CreatedAt.UTC().Format(time.RFC3339),
			a.Barangay,
			a.Category,
			string(a.Severity),
			string(a.Status),
			len(a.SentinelIDs),
			len(a.ObservationIDs),
			strings.Join(a.SentinelIDs, ", "),
			strings.Join(a.ObservationIDs, ", "),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(alertsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write alert row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
