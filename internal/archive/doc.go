// Package archive holds the all-or-nothing archival gate and the exec
// wrapper around the external zip tool.
package archive
