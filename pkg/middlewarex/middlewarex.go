// Package middlewarex holds the chi middleware chain: trace id, per-request
// logger, request/response dumps, panic recovery.
package middlewarex

import "buybox_console/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals
