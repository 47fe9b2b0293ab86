package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing pipeline Prometheus metrics.
var (
	IndexingTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moavec",
			Name:      "indexing_tasks_total",
			Help:      "Completed indexing tasks by outcome",
		},
		[]string{"status"}, // "success" / "partial" / "error"
	)

	IndexingChunksWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "moavec",
			Name:      "indexing_chunks_written_total",
			Help:      "Chunk rows persisted by the indexing pipeline",
		},
	)

	IndexingRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "moavec",
			Name:      "indexing_retries_total",
			Help:      "Batch write retry attempts",
		},
	)

	IndexingQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "moavec",
			Name:      "indexing_queue_depth",
			Help:      "Tasks waiting in the indexing queue",
		},
	)
)

var idxMetricsRegistered bool

// RegisterIndexingMetrics registers Prometheus indexing metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if idxMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexingTasksTotal)
	prometheus.MustRegister(IndexingChunksWrittenTotal)
	prometheus.MustRegister(IndexingRetriesTotal)
	prometheus.MustRegister(IndexingQueueDepth)
	idxMetricsRegistered = true
}
