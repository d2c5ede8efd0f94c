// Package metrics exposes Prometheus counters for background work so that
// fire-and-forget failures stay observable.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IndexBuilds counts completed index builds.
	IndexBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hanashi_index_builds_total",
		Help: "Completed knowledge index builds.",
	})

	// IndexBuildFailures counts index builds that panicked or failed.
	IndexBuildFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hanashi_index_build_failures_total",
		Help: "Knowledge index builds that failed.",
	})

	// SessionsClosed counts closed sessions by close reason.
	SessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hanashi_sessions_closed_total",
		Help: "Sessions closed, labeled by reason.",
	}, []string{"reason"})

	// TranscriptsDispatched counts transcript emails handed to the mailer.
	TranscriptsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hanashi_transcripts_dispatched_total",
		Help: "Transcripts dispatched successfully.",
	})

	// TranscriptFailures counts transcript dispatches that failed.
	TranscriptFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hanashi_transcript_failures_total",
		Help: "Transcript dispatches that failed.",
	})

	// Messages counts visitor messages accepted into sessions.
	Messages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hanashi_visitor_messages_total",
		Help: "Visitor messages accepted into sessions.",
	})
)
