package task

import (
	"fmt"
	"strings"
	"time"
)

// Item is one manifest row: one file to fetch. Immutable once built.
type Item struct {
	URL      string
	FileName string
	// Group is the optional destination subfolder below the task folder.
	Group string
}

// validate rejects rows that could escape the task's output folder.
func (i Item) validate() error {
	if strings.TrimSpace(i.URL) == "" {
		return fmt.Errorf("item has empty url")
	}
	name := strings.TrimSpace(i.FileName)
	if name == "" {
		return fmt.Errorf("item has empty file name")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid file name %q", name)
	}
	if group := strings.TrimSpace(i.Group); group != "" {
		if strings.ContainsAny(group, `/\`) || group == ".." {
			return fmt.Errorf("invalid folder name %q", group)
		}
	}
	return nil
}

// Result records the outcome of one Item. Exactly one of DownloadedAt and
// Err is set.
type Result struct {
	Item            Item
	DestinationPath string
	DownloadedAt    *time.Time
	Err             *ErrorInfo
}

// Downloaded reports whether the transfer succeeded.
func (r Result) Downloaded() bool {
	return r.DownloadedAt != nil
}
