// Package notifications delivers the per-run summary mail and the
// administrative setup-failure channel.
package notifications
