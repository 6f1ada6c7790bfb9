// Package fileutil provides small filesystem helpers shared across the
// engine, including the failure marker document.
package fileutil
