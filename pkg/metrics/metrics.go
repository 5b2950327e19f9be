// Package metrics provides Prometheus metrics for the ornithologist node.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registry holds this node's collectors only; the default Go and process
// collectors add nothing useful to a single-purpose rollup node.
var registry = prometheus.NewRegistry()

var (
	inputsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "ornithologist",
		Name:      "inputs_total",
		Help:      "Rollup inputs processed, by kind and final status.",
	}, []string{"kind", "status"})

	outputsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "ornithologist",
		Name:      "outputs_total",
		Help:      "Outputs emitted to the rollup server, by kind.",
	}, []string{"kind"})

	birdsCreatedTotal = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "ornithologist",
		Name:      "birds_created_total",
		Help:      "Birds created by the encounter flow.",
	})

	duelsResolvedTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "ornithologist",
		Name:      "duels_resolved_total",
		Help:      "Duels resolved, by outcome.",
	}, []string{"outcome"})

	liveDuels = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "ornithologist",
		Name:      "live_duels",
		Help:      "Duels currently in flight.",
	})

	birds = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: "ornithologist",
		Name:      "birds",
		Help:      "Birds ever created and still tracked.",
	})
)

// Input status labels.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Duel outcome labels.
const (
	OutcomeWin        = "win"
	OutcomeDraw       = "draw"
	OutcomeForfeiture = "forfeiture"
	OutcomeTimeout    = "timeout"
	OutcomeCancelled  = "cancelled"
)

// RecordInput counts one processed rollup input.
func RecordInput(kind, status string) {
	inputsTotal.WithLabelValues(kind, status).Inc()
}

// RecordOutput counts one emitted voucher, notice or report.
func RecordOutput(kind string) {
	outputsTotal.WithLabelValues(kind).Inc()
}

// RecordBirdCreated counts a bird created by the encounter flow.
func RecordBirdCreated() {
	birdsCreatedTotal.Inc()
}

// RecordDuelResolved counts a resolved duel by outcome.
func RecordDuelResolved(outcome string) {
	duelsResolvedTotal.WithLabelValues(outcome).Inc()
}

// UpdateLiveDuels sets the in-flight duel gauge.
func UpdateLiveDuels(n int) {
	liveDuels.Set(float64(n))
}

// UpdateBirds sets the tracked-bird gauge.
func UpdateBirds(n int) {
	birds.Set(float64(n))
}

// Handler exposes the node's registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
