package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	updatesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buybox_updates_submitted_total",
		Help: "Live-pricing updates accepted by the pricing API.",
	})
	updatesVerified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buybox_updates_verified_total",
		Help: "Updates confirmed by a fresh record fetch.",
	})
	updatesFallback = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buybox_updates_fallback_total",
		Help: "Updates resolved from partial data after verification exhausted its retries.",
	})
	updatesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buybox_updates_failed_total",
		Help: "Updates rejected at submit time.",
	})
	feedChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buybox_feed_checks_total",
		Help: "Feed status checks by resulting state.",
	}, []string{"state"})
)
