package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

var (
	// ErrSheetNotFound marks a manifest whose configured worksheet is absent.
	ErrSheetNotFound = errors.New("worksheet not found")
	// ErrSourceNotReadable marks a manifest file that is missing or unreadable.
	ErrSourceNotReadable = errors.New("manifest not readable")
)

var headerFolder = cases.Fold()

// Row is one manifest row with cells keyed by case-folded header name.
type Row struct {
	// Index is the 1-based data row number, excluding the header row.
	Index int

	cells map[string]string
}

// NewRow builds a row from header-keyed cells. Keys are case-folded so
// lookups are case-insensitive.
func NewRow(index int, cells map[string]string) Row {
	folded := make(map[string]string, len(cells))
	for key, value := range cells {
		folded[foldHeader(key)] = value
	}
	return Row{Index: index, cells: folded}
}

// Value returns the cell under the named column, or "" when absent.
func (r Row) Value(column string) string {
	return r.cells[foldHeader(column)]
}

func foldHeader(name string) string {
	return headerFolder.String(strings.TrimSpace(name))
}

// Loader reads manifest rows from xlsx workbooks. Loading is a pure read;
// row contents are not validated here.
type Loader struct{}

// Rows returns the ordered data rows of the named worksheet. The first
// sheet row is treated as the header. Rows that are entirely empty are
// skipped.
func (Loader) Rows(path, sheet string) ([]Row, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceNotReadable, path, err)
	}
	defer book.Close()

	raw, err := book.GetRows(sheet)
	if err != nil {
		var sheetErr excelize.ErrSheetNotExist
		if errors.As(err, &sheetErr) {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceNotReadable, path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headers := raw[0]
	rows := make([]Row, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		if emptyCells(cells) {
			continue
		}
		keyed := make(map[string]string, len(headers))
		for col, header := range headers {
			if strings.TrimSpace(header) == "" {
				continue
			}
			value := ""
			if col < len(cells) {
				value = cells[col]
			}
			keyed[header] = value
		}
		rows = append(rows, NewRow(i+1, keyed))
	}
	return rows, nil
}

func emptyCells(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
