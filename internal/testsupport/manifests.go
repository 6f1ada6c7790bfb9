package testsupport

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// WriteManifest writes an xlsx workbook with the given header and data
// rows on the named worksheet.
func WriteManifest(t testing.TB, path, sheet string, rows [][]string) {
	t.Helper()

	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
		t.Fatalf("set sheet name: %v", err)
	}
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := book.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save manifest %s: %v", path, err)
	}
}

// SimpleManifest writes a {Url, FileName} manifest with one row per URL
// using derived file names f0, f1, ...
func SimpleManifest(t testing.TB, path, sheet string, urls ...string) {
	t.Helper()

	rows := [][]string{{"Url", "FileName"}}
	for i, url := range urls {
		rows = append(rows, []string{url, fileName(i)})
	}
	WriteManifest(t, path, sheet, rows)
}

func fileName(i int) string {
	return "f" + string(rune('0'+i)) + ".bin"
}
