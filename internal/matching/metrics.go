package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchPairsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_pairs_created_total",
			Help: "Total number of match pairs materialized",
		},
	)

	candidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_skipped_total",
			Help: "Candidates skipped during materialization",
		},
		[]string{"reason"},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_scores",
			Help:    "Distribution of computed match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	scoreCacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_score_cache_ops_total",
			Help: "Score cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	visibilityTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_visibility_transitions_total",
			Help: "Match visibility transitions by action",
		},
		[]string{"action"},
	)
)

// Skip reasons recorded during materialization.
const (
	skipReasonCapped         = "capped"
	skipReasonLowScore       = "low_score"
	skipReasonMissingProfile = "missing_profile"
)

func RecordPairCreated() {
	matchPairsCreated.Inc()
}

func RecordCandidateSkipped(reason string) {
	candidatesSkipped.WithLabelValues(reason).Inc()
}

func RecordMatchScore(score int) {
	matchScores.Observe(float64(score))
}

func RecordCacheHit() {
	scoreCacheOps.WithLabelValues("hit").Inc()
}

func RecordCacheMiss() {
	scoreCacheOps.WithLabelValues("miss").Inc()
}

func RecordVisibilityTransition(action string) {
	visibilityTransitions.WithLabelValues(action).Inc()
}
