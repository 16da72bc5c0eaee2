package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Column widths roughly matching the on-screen register layout
var xlsxColWidths = []float64{30, 18, 14, 14, 16, 16, 18, 42, 12, 22, 22}

func writeXLSX(path string, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Complaints"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create summary style: %w", err)
	}

	// Row 1: title + summary, merged across the table width
	summary := report.Title + " | " + report.FilterLine + " | " + SummaryLine(report.Summary)
	if err := f.SetCellValue(sheet, "A1", summary); err != nil {
		return fmt.Errorf("failed to write summary row: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	_ = f.MergeCell(sheet, "A1", lastCol+"1")
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", summaryStyle)

	// Row 2: header
	for i, h := range Headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s2", col)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header cell %s: %w", cell, err)
		}
		_ = f.SetCellStyle(sheet, cell, cell, boldStyle)
		_ = f.SetColWidth(sheet, col, col, xlsxColWidths[i])
	}
	_ = f.AutoFilter(sheet, fmt.Sprintf("A2:%s2", lastCol), nil)

	// Data rows from row 3
	for r, row := range report.Rows {
		for c, value := range row {
			col, _ := excelize.ColumnNumberToName(c + 1)
			cell := fmt.Sprintf("%s%d", col, r+3)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
