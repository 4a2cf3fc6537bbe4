// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toolscout"

var (
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Chat requests by routing strategy and result code",
	}, []string{"strategy", "code"})

	ChatLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "latency_seconds",
		Help:      "End-to-end chat latency by tier",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"tier"})

	LMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lm",
		Name:      "calls_total",
		Help:      "LM provider calls by model and outcome (ok, rate_limited, error)",
	}, []string{"model", "outcome"})

	LMContinuations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lm",
		Name:      "continuations_total",
		Help:      "Continuation calls issued for truncated answers",
	})

	LMCostUSD = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lm",
		Name:      "cost_usd_total",
		Help:      "Estimated provider spend in USD",
	}, []string{"model"})

	BreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "breaker",
		Name:      "open",
		Help:      "1 while the LM circuit breaker is open",
	})

	TierDowngrades = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tier",
		Name:      "downgrades_total",
		Help:      "Requests forced to GUEST by the open breaker",
	})

	GateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gate",
		Name:      "rejections_total",
		Help:      "Requests rejected before the graph by gate",
	}, []string{"gate"})
)

// SetBreaker mirrors breaker transitions into the gauge.
func SetBreaker(open bool) {
	if open {
		BreakerOpen.Set(1)
		return
	}
	BreakerOpen.Set(0)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
