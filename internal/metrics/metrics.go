// Package metrics holds Prometheus instruments shared across the
// storefront.  All collectors register with the global registry, so
// importing this package from cmd/web is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StoreResolveTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_resolve_total",
			Help: "Requests for which a store identity was resolved.",
		})

	StoreResolveErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_resolve_errors_total",
			Help: "Store resolution failures by class.",
		}, []string{"class"}) // not_found | inactive | transient

	CommerceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commerce_errors_total",
			Help: "Upstream commerce call failures by operation and class.",
		}, []string{"op", "class"})

	DegradedRendersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "degraded_renders_total",
			Help: "Pages served with a secondary section omitted after a transient upstream failure.",
		})

	TrackingDispatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_dispatch_total",
			Help: "Fire-and-forget tracking events dispatched.",
		})

	TrackingFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_failures_total",
			Help: "Tracking events that failed upstream (always swallowed).",
		})

	DomainMapEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "domain_map_entries",
			Help: "Custom-domain mappings currently cached in memory.",
		})
)

func init() {
	prometheus.MustRegister(
		StoreResolveTotal,
		StoreResolveErrorsTotal,
		CommerceErrorsTotal,
		DegradedRendersTotal,
		TrackingDispatchTotal,
		TrackingFailuresTotal,
		DomainMapEntries,
	)
}
