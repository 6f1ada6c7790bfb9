// Package deps checks the external binaries and directory permissions a
// run depends on before any task is attempted.
package deps
