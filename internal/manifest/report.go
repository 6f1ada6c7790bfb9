package manifest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReportSheet is the worksheet name of the per-task report workbook.
const ReportSheet = "Results"

var reportColumns = []string{"Url", "FileName", "Destination", "DownloadedOn", "Error"}

// ReportRow is one line of the per-task report artifact. Exactly one of
// DownloadedOn and Error is populated.
type ReportRow struct {
	URL          string
	FileName     string
	Destination  string
	DownloadedOn string
	Error        string
}

// WriteReport writes one row per download result to an xlsx workbook at
// path.
func WriteReport(path string, rows []ReportRow) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), ReportSheet); err != nil {
		return fmt.Errorf("name report sheet: %w", err)
	}

	for col, header := range reportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := book.SetCellValue(ReportSheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range rows {
		cells := []string{row.URL, row.FileName, row.Destination, row.DownloadedOn, row.Error}
		for col, value := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("result cell: %w", err)
			}
			if err := book.SetCellValue(ReportSheet, cell, value); err != nil {
				return fmt.Errorf("write result row %d: %w", i+1, err)
			}
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
