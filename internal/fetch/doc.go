// Package fetch contains the bounded-concurrency download scheduler, the
// HTTP transfer client, and the error classification recorded per item.
package fetch
