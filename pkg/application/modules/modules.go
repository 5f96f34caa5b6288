// Package modules groups the long-running pieces of the process behind one
// errgroup, so a failure in any of them tears the application down cleanly.
package modules

import "buybox_console/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals
