package task

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"stockpile/internal/manifest"
)

// Column names as they appear in manifests and in validation messages.
const (
	ColumnURL    = "Url"
	ColumnFile   = "FileName"
	ColumnFolder = "DownloadFolderName"
)

// Shape names the set of required columns for a manifest variant.
type Shape struct {
	Columns []string
	Grouped bool
}

var (
	// ShapeSimple is the two-column manifest: every item lands directly
	// in the task folder.
	ShapeSimple = Shape{Columns: []string{ColumnURL, ColumnFile}}
	// ShapeGrouped adds a destination subfolder per row.
	ShapeGrouped = Shape{Columns: []string{ColumnURL, ColumnFile, ColumnFolder}, Grouped: true}
)

// Source pairs a manifest identity with its loaded rows, or with the load
// failure when reading it did not succeed.
type Source struct {
	Identity  string
	Worksheet string
	Rows      []manifest.Row
	LoadErr   error
}

// Builder turns loaded manifests into tasks. Validation is strict
// all-or-nothing per source: a single malformed row invalidates the whole
// task while leaving sibling tasks untouched.
type Builder struct {
	DownloadDir string
	Shape       Shape

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// Build constructs one task per source. Output folders are unique within
// the run even when two manifests share a base name.
func (b *Builder) Build(sources []Source) []*Task {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	used := make(map[string]bool, len(sources))
	tasks := make([]*Task, 0, len(sources))
	for _, src := range sources {
		t := &Task{
			Source:    src.Identity,
			Worksheet: src.Worksheet,
			Status:    StatusValidating,
		}
		t.OutputFolder = uniqueFolder(b.DownloadDir, src.Identity, now(), used)

		switch {
		case errors.Is(src.LoadErr, manifest.ErrSheetNotFound):
			t.ValidationError = fmt.Sprintf("Worksheet '%s' not found", src.Worksheet)
			t.Status = StatusValidationFailed
		case src.LoadErr != nil:
			t.TaskError = src.LoadErr.Error()
			t.Status = StatusSourceUnreadable
		default:
			b.buildItems(t, src.Rows)
		}

		tasks = append(tasks, t)
	}
	return tasks
}

func (b *Builder) buildItems(t *Task, rows []manifest.Row) {
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		if field, ok := missingField(row, b.Shape.Columns); !ok {
			t.ValidationError = fmt.Sprintf("Property '%s' not found", field)
			t.Status = StatusValidationFailed
			return
		}
		item := Item{
			URL:      strings.TrimSpace(row.Value(ColumnURL)),
			FileName: strings.TrimSpace(row.Value(ColumnFile)),
		}
		if b.Shape.Grouped {
			item.Group = strings.TrimSpace(row.Value(ColumnFolder))
		}
		if err := item.validate(); err != nil {
			t.ValidationError = capitalize(err.Error())
			t.Status = StatusValidationFailed
			return
		}
		items = append(items, item)
	}
	t.Items = items
	t.Status = StatusFetching
}

// missingField returns the first required column with an empty value.
func missingField(row manifest.Row, columns []string) (string, bool) {
	for _, col := range columns {
		if strings.TrimSpace(row.Value(col)) == "" {
			return col, false
		}
	}
	return "", true
}

// uniqueFolder composes <base>_<timestamp> under dir, suffixing a counter
// when two sources would collide within the same run.
func uniqueFolder(dir, identity string, now time.Time, used map[string]bool) string {
	base := strings.TrimSuffix(filepath.Base(identity), filepath.Ext(identity))
	if base == "" || base == "." {
		base = "manifest"
	}
	stamp := now.Format("20060102-150405")
	candidate := filepath.Join(dir, base+"_"+stamp)
	for i := 2; used[candidate]; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%s_%d", base, stamp, i))
	}
	used[candidate] = true
	return candidate
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
