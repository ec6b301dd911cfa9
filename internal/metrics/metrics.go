package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScansStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vibe_scans_started_total",
		Help: "Scans that entered processing",
	})
	ScansCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vibe_scans_completed_total",
		Help: "Scans that produced a result, by verdict",
	}, []string{"verdict"})
	ScansFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vibe_scans_failed_total",
		Help: "Scans whose analysis failed",
	})
	PaywallRouted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vibe_paywall_routed_total",
		Help: "Scan attempts sent to the paywall by the daily quota",
	})
	ImprovedImages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vibe_improved_image_total",
		Help: "Improved-look generations, by outcome",
	}, []string{"outcome"})
	PersistenceErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vibe_persistence_errors_total",
		Help: "Failed store writes, by operation",
	}, []string{"operation"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Duration of outbound network requests",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
	}, []string{"component", "operation", "target", "status"})
	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Outbound network requests",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister registers every collector.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ScansStarted,
		ScansCompleted,
		ScansFailed,
		PaywallRouted,
		ImprovedImages,
		PersistenceErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest records duration and status of an outbound request.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(time.Since(start).Seconds())
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}
