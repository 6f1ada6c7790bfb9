// Package manifest reads download manifests from xlsx workbooks and
// writes the per-task report artifact. It is a thin boundary: structural
// validation of rows happens in the task builder.
package manifest
