// Package metrics holds Prometheus instruments that are used across the
// theme engine.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanizio/primer/internal/hook"
)

var (
	HookDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "primer_hook_dispatch_total",
			Help: "Cumulative number of extension-point dispatches, by kind.",
		}, []string{"kind"})

	HookCallbackFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "primer_hook_callback_failures_total",
			Help: "Callbacks that returned an error or panicked, by point.",
		}, []string{"point"})

	DeclarationsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "primer_declarations_dropped_total",
			Help: "Declarative entries dropped by validation, by registry.",
		}, []string{"registry"})

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "primer_cache_lookups_total",
			Help: "Lazy cache lookups, by cache name and result (hit, miss).",
		}, []string{"cache", "result"})

	CacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "primer_cache_invalidations_total",
			Help: "Lazy cache invalidations, by cache name.",
		}, []string{"cache"})

	PageRenderTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "primer_page_render_total",
			Help: "Composed pages, by final HTTP status.",
		}, []string{"status"})
)

func init() {
	prometheus.MustRegister(
		HookDispatchTotal,
		HookCallbackFailuresTotal,
		DeclarationsDroppedTotal,
		CacheLookupsTotal,
		CacheInvalidationsTotal,
		PageRenderTotal,
	)
}

// HookObserver feeds hook.Registry events into the counters above.
type HookObserver struct{}

var _ hook.Observer = HookObserver{}

func (HookObserver) Dispatched(kind hook.Kind, _ string) {
	HookDispatchTotal.WithLabelValues(kind.String()).Inc()
}

func (HookObserver) Failed(point, _ string) {
	HookCallbackFailuresTotal.WithLabelValues(point).Inc()
}
