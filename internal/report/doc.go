// Package report reduces completed tasks into the run summary carried by
// the notification and the CLI output.
package report
