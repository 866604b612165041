package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tutormate"

var (
	GameSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "game_submissions_total",
		Help:      "Game submissions by outcome (recorded, duplicate, error).",
	}, []string{"outcome"})

	GameRewards = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "game_rewards_total",
		Help:      "Rewards granted for recorded game submissions.",
	}, []string{"reward"})

	MasteryUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mastery_updates_total",
		Help:      "Concept mastery updates by correctness.",
	}, []string{"correct"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "LLM requests by provider and status.",
	}, []string{"provider", "status"})

	LLMLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "LLM request latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"provider"})

	EventsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_handled_total",
		Help:      "Event handler invocations by event name and status.",
	}, []string{"event", "status"})
)
