package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/sony/gobreaker"
)

// ResilientConfig configures ResilientSink.
type ResilientConfig struct {
	Name                string
	Retry               service.RetryOptions
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultResilientConfig returns settings suited to a local database.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Name: "storage",
		Retry: service.RetryOptions{
			MaxAttempts:  4,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2,
		},
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             10 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// ResilientSink guards batch writes with retries and a circuit breaker.
// Only transient failures count against the breaker; validation errors
// pass straight through.
type ResilientSink struct {
	sink    service.BatchSink
	cb      *gobreaker.CircuitBreaker
	metrics metrics.Collector
	retry   service.RetryOptions
}

var _ service.BatchSink = (*ResilientSink)(nil)

// NewResilientSink wraps sink.
func NewResilientSink(sink service.BatchSink, cfg ResilientConfig, collector metrics.Collector) *ResilientSink {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}

	rs := &ResilientSink{
		sink:    sink,
		metrics: collector,
		retry:   cfg.Retry,
	}

	rs.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !common.IsRetryable(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			rs.metrics.RecordCircuitState(name, state)
		},
	})

	return rs
}

// SaveBatch implements service.BatchSink.
func (rs *ResilientSink) SaveBatch(ctx context.Context, transactions []model.Transaction, processedIDs []string) error {
	start := time.Now()

	err := common.WithRetry(ctx, func() error {
		_, err := rs.cb.Execute(func() (any, error) {
			return nil, rs.sink.SaveBatch(ctx, transactions, processedIDs)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", common.ErrCircuitOpen, err)
		}
		return err
	}, rs.retry)

	rs.metrics.RecordStorageWrite(err == nil, time.Since(start))
	return err
}

// State returns the breaker state.
func (rs *ResilientSink) State() gobreaker.State {
	return rs.cb.State()
}
