// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"groundchat/internal/app/search"
)

var (
	// ChatRequests counts /api/chat outcomes: ok, unauthorized, invalid, failed.
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundchat_chat_requests_total",
		Help: "Chat requests by outcome",
	}, []string{"outcome"})

	SearchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundchat_search_failures_total",
		Help: "Search lookups that degraded to empty context, by reason",
	}, []string{"reason"})

	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "groundchat_completion_duration_seconds",
		Help:    "Completion call latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~64s
	}, []string{"result"})

	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groundchat_auth_events_total",
		Help: "Login, registration and logout attempts by event and result",
	}, []string{"event", "result"})
)

// ObserveSearchFailure is a search.Retriever failure observer.
func ObserveSearchFailure(err error) {
	SearchFailures.WithLabelValues(searchFailureReason(err)).Inc()
}

// ObserveCompletion is a completion.Client observer.
func ObserveCompletion(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CompletionDuration.WithLabelValues(result).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func searchFailureReason(err error) string {
	var statusErr *search.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "error"
	}
}
