package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	passes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "sync_passes_total",
			Help:      "Sync driver passes by result.",
		},
		[]string{"result"},
	)

	items = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "sync_items_total",
			Help:      "Processed sync items by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "voyago",
			Name:      "sync_queue_depth",
			Help:      "Items currently in the sync queue.",
		},
	)

	deadLetters = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "sync_dead_letters_total",
			Help:      "Items dropped after the attempt ceiling or a fatal failure.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(passes, items, queueDepth, deadLetters, httpRequests)
	})
}

// IncPass increments the pass counter for a result label
// (processed, no_connectivity, empty).
func IncPass(result string) {
	passes.WithLabelValues(result).Inc()
}

// IncItem increments the item counter for a type/outcome pair.
func IncItem(itemType, outcome string) {
	items.WithLabelValues(itemType, outcome).Inc()
}

// SetQueueDepth records the current queue size.
func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

// IncDeadLetter counts a permanently failed item.
func IncDeadLetter() {
	deadLetters.Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
