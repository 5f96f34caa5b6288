// Package worker owns the asynchronous flows around price changes: the
// update coordinator (submit, verify, resolve), the margin safety gate and
// the feed status poller.
package worker

import "buybox_console/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals
