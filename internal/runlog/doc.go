// Package runlog persists run history so the summary mailed after a run
// stays queryable afterwards via `stockpile history`.
package runlog
