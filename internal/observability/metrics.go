package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_assistant_turns_total",
		Help: "Total number of conversation turns resolved",
	}, []string{"outcome"})

	turnsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iss_assistant_turns_in_flight",
		Help: "Number of turns between submission and resolution",
	})

	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "iss_assistant_turn_duration_seconds",
		Help:    "Duration of a turn from submission to resolution",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	stageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_assistant_stage_outcomes_total",
		Help: "Pipeline stage results by stage and outcome (ok, recovered, fatal)",
	}, []string{"stage", "outcome"})

	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_assistant_llm_requests_total",
		Help: "Total number of language model calls",
	}, []string{"purpose", "status"})

	llmLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "iss_assistant_llm_latency_seconds",
		Help:    "Language model call latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	}, []string{"purpose"})

	dispatchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_assistant_dispatch_requests_total",
		Help: "Total number of backend dispatches",
	}, []string{"route", "status"})

	syntheticResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iss_assistant_synthetic_results_total",
		Help: "Synthetic results produced after a failed dispatch",
	}, []string{"route"})
)

// TurnStarted records a turn entering the pipeline.
func TurnStarted() {
	turnsInFlight.Inc()
}

// TurnResolved records a turn leaving the pipeline.
func TurnResolved(outcome string, started time.Time) {
	turnsInFlight.Dec()
	turnsTotal.WithLabelValues(outcome).Inc()
	turnDuration.Observe(time.Since(started).Seconds())
}

// RecordStage records the outcome of one pipeline stage.
func RecordStage(stage, outcome string) {
	stageOutcomes.WithLabelValues(stage, outcome).Inc()
}

// RecordLLM records a model call for the given purpose.
func RecordLLM(purpose string, started time.Time, err error) {
	llmLatency.WithLabelValues(purpose).Observe(time.Since(started).Seconds())
	llmRequests.WithLabelValues(purpose, statusLabel(err)).Inc()
}

// RecordDispatch records a backend call. route must come from a fixed set.
func RecordDispatch(route string, err error) {
	dispatchRequests.WithLabelValues(route, statusLabel(err)).Inc()
}

// RecordSynthetic records a fabricated result for route.
func RecordSynthetic(route string) {
	syntheticResults.WithLabelValues(route).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
