// Package runner executes one batch run end to end: preflight checks,
// manifest loading, per-task downloads and archival, report artifacts,
// aggregation, notification and run-history recording. A run holds an
// exclusive lock on the download root for its duration.
package runner
