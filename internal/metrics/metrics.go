// ABOUTME: Prometheus instruments for conversations and external calls
// ABOUTME: Registered on the default registry and served at /metrics
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// External call names used as the "call" label
const (
	CallEmbedding   = "embedding"
	CallIntent      = "intent"
	CallExactMenus  = "exact_menus"
	CallSimilarMenu = "similar_menus"
	CallMoodTags    = "mood_tags"
	CallRecommend   = "recommend_places"
	CallSaveChoice  = "save_choice"
	CallEnsureUser  = "ensure_user"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dongne_sessions_started_total",
			Help: "Total number of conversations started",
		},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dongne_stage_transitions_total",
			Help: "Dialogue stage transitions by outcome",
		},
		[]string{"from", "to", "outcome"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dongne_external_call_duration_seconds",
			Help:    "Duration of embedding, LLM and graph calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	ExternalCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dongne_external_call_failures_total",
			Help: "External calls that failed after retries",
		},
		[]string{"call"},
	)

	ChoicesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dongne_choices_recorded_total",
			Help: "Final place selections by write status",
		},
		[]string{"status"},
	)
)

// Observe times fn under the given call label and counts its failure
func Observe(call string, fn func() error) error {
	start := time.Now()
	err := fn()
	ExternalCallDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		ExternalCallFailures.WithLabelValues(call).Inc()
	}
	return err
}
