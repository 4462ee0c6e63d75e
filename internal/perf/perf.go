// Package perf hosts the engine's runtime instrumentation. It replaces a
// hand-rolled timing/formatting helper with real Prometheus collectors;
// nothing in this package starts an HTTP server — an embedder that wants
// to scrape it mounts promhttp.Handler() itself against the default
// registry these collectors register into.
package perf

import "github.com/prometheus/client_golang/prometheus"

var (
	// StepDuration records wall-clock time spent in named subsystem steps
	// (engine update, engine render, chunk residency update, physics update).
	StepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxelite",
		Name:      "step_duration_seconds",
		Help:      "Duration of a named engine subsystem step.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"subsystem"})

	// LoadedChunks tracks the current resident chunk count per world
	// session.
	LoadedChunks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "voxelite",
		Name:      "loaded_chunks",
		Help:      "Number of chunks currently resident in memory.",
	}, []string{"session"})

	// PendingQueueDepth tracks how many completed chunks are waiting to
	// be drained onto the main thread.
	PendingQueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "voxelite",
		Name:      "pending_queue_depth",
		Help:      "Number of completed chunks awaiting main-thread publish.",
	}, []string{"session"})
)

func init() {
	prometheus.MustRegister(StepDuration, LoadedChunks, PendingQueueDepth)
}

// Track starts a histogram timer for subsystem and returns a function
// that records the elapsed duration when called, typically via defer.
func Track(subsystem string) func() {
	t := prometheus.NewTimer(StepDuration.WithLabelValues(subsystem))
	return func() { t.ObserveDuration() }
}
