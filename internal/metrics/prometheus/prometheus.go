// Package prometheus exports application metrics to Prometheus.
package prometheus

import (
	"strconv"
	"time"

	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements metrics.Collector for Prometheus.
type Collector struct {
	extractions       *prometheus.CounterVec
	extractionLatency *prometheus.HistogramVec
	duplicates        *prometheus.CounterVec
	batches           prometheus.Counter
	batchMessages     prometheus.Counter
	batchTransactions prometheus.Counter
	batchLatency      prometheus.Histogram
	circuitState      *prometheus.GaugeVec
	circuitOpens      *prometheus.CounterVec
	storageWrites     *prometheus.CounterVec
	storageLatency    prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

var _ metrics.Collector = (*Collector)(nil)

// NewCollector creates a collector whose metric names are prefixed with
// namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extractions_total",
				Help:      "Total number of messages run through extraction by message type and confidence level",
			},
			[]string{"message_type", "confidence"},
		),
		extractionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extraction_duration_seconds",
				Help:      "Extraction latency per message",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15), // 10us to ~160ms
			},
			[]string{"message_type"},
		),
		duplicates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicates_total",
				Help:      "Total number of suppressed duplicate transactions by source",
			},
			[]string{"source"},
		),
		batches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Total number of processing batches",
			},
		),
		batchMessages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_messages_total",
				Help:      "Total number of messages consumed by processing batches",
			},
		),
		batchTransactions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_transactions_total",
				Help:      "Total number of transactions saved by processing batches",
			},
		),
		batchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Processing batch latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Total number of circuit breaker opens",
			},
			[]string{"name"},
		),
		storageWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_writes_total",
				Help:      "Total number of batch writes by status",
			},
			[]string{"status"},
		),
		storageLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_write_duration_seconds",
				Help:      "Batch write latency including retries",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// Register registers all metrics with the given registry.
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.extractions,
		c.extractionLatency,
		c.duplicates,
		c.batches,
		c.batchMessages,
		c.batchTransactions,
		c.batchLatency,
		c.circuitState,
		c.circuitOpens,
		c.storageWrites,
		c.storageLatency,
		c.httpRequests,
		c.httpLatency,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordExtraction records one extraction decision.
func (c *Collector) RecordExtraction(messageType model.MessageType, level model.ConfidenceLevel, duration time.Duration) {
	c.extractions.WithLabelValues(string(messageType), string(level)).Inc()
	c.extractionLatency.WithLabelValues(string(messageType)).Observe(duration.Seconds())
}

// RecordDuplicate records a suppressed duplicate.
func (c *Collector) RecordDuplicate(source string) {
	c.duplicates.WithLabelValues(source).Inc()
}

// RecordBatch records a completed processing batch.
func (c *Collector) RecordBatch(messages, transactions int, duration time.Duration) {
	c.batches.Inc()
	c.batchMessages.Add(float64(messages))
	c.batchTransactions.Add(float64(transactions))
	c.batchLatency.Observe(duration.Seconds())
}

// RecordCircuitState records the current circuit breaker state.
func (c *Collector) RecordCircuitState(name string, state metrics.CircuitState) {
	c.circuitState.WithLabelValues(name).Set(float64(state))
	if state == metrics.CircuitOpen {
		c.circuitOpens.WithLabelValues(name).Inc()
	}
}

// RecordStorageWrite records a batch write attempt.
func (c *Collector) RecordStorageWrite(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	c.storageWrites.WithLabelValues(status).Inc()
	c.storageLatency.Observe(duration.Seconds())
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}
