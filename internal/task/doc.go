// Package task defines the engine's data model: download items, their
// results, and the per-manifest task that isolates faults between
// independent manifests in one run.
package task
