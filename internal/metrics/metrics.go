// Package metrics defines the collector interface used to observe extraction,
// batch processing, storage and the HTTP API.
package metrics

import (
	"time"

	"github.com/Veraticus/rupee-flow/internal/model"
)

// Collector receives application metrics. Implementations export them to a
// backend such as Prometheus.
type Collector interface {
	// Extraction
	RecordExtraction(messageType model.MessageType, level model.ConfidenceLevel, duration time.Duration)

	// Batch processing
	RecordDuplicate(source string)
	RecordBatch(messages, transactions int, duration time.Duration)

	// Storage
	RecordCircuitState(name string, state CircuitState)
	RecordStorageWrite(success bool, duration time.Duration)

	// HTTP
	RecordHTTPRequest(route, method string, status int, duration time.Duration)
}

// Duplicate sources.
const (
	DuplicateBatch     = "batch"
	DuplicatePersisted = "persisted"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed means the circuit breaker is allowing requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the circuit breaker is blocking requests.
	CircuitOpen
	// CircuitHalfOpen means the circuit breaker is testing if the store has recovered.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector discards all metrics.
type NoOpCollector struct{}

// RecordExtraction does nothing.
func (NoOpCollector) RecordExtraction(model.MessageType, model.ConfidenceLevel, time.Duration) {}

// RecordDuplicate does nothing.
func (NoOpCollector) RecordDuplicate(string) {}

// RecordBatch does nothing.
func (NoOpCollector) RecordBatch(int, int, time.Duration) {}

// RecordCircuitState does nothing.
func (NoOpCollector) RecordCircuitState(string, CircuitState) {}

// RecordStorageWrite does nothing.
func (NoOpCollector) RecordStorageWrite(bool, time.Duration) {}

// RecordHTTPRequest does nothing.
func (NoOpCollector) RecordHTTPRequest(string, string, int, time.Duration) {}
