// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/rupee-flow/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	UserID        string
	Type          model.TransactionType
	MinConfidence int
	Limit         int
	Offset        int
}

// FingerprintKey identifies a persisted transaction for duplicate checks.
type FingerprintKey struct {
	UserID      string
	Fingerprint string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Message operations
	SaveMessages(ctx context.Context, messages []model.Message) error
	GetUnprocessedMessages(ctx context.Context, limit int) ([]model.Message, error)
	GetMessage(ctx context.Context, id string) (*model.Message, error)

	// Transaction operations
	BatchSink
	HasFingerprint(ctx context.Context, userID, fingerprint string) (bool, error)
	ListFingerprints(ctx context.Context) ([]FingerprintKey, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Balance operations
	UpsertBalance(ctx context.Context, snapshot model.BalanceSnapshot) error
	GetBalance(ctx context.Context, userID string) (*model.BalanceSnapshot, error)

	// Reporting
	ProcessingStatus(ctx context.Context) (*ProcessingStatus, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// BatchSink persists the outcome of one processing batch atomically: the
// accepted transactions and the ids of every message the batch consumed.
type BatchSink interface {
	SaveBatch(ctx context.Context, transactions []model.Transaction, processedIDs []string) error
}

// ProcessingStatus summarizes how much of the message backlog is processed.
type ProcessingStatus struct {
	TotalMessages       int     `json:"total_messages"`
	ProcessedMessages   int     `json:"processed_messages"`
	UnprocessedMessages int     `json:"unprocessed_messages"`
	Transactions        int     `json:"transactions"`
	ProcessedPercentage float64 `json:"processed_percentage"`
}

// BatchStats shows the results of a processing run.
type BatchStats struct {
	Messages         int           `json:"messages"`
	Transactions     int           `json:"transactions"`
	NonTransactions  int           `json:"non_transactions"`
	Duplicates       int           `json:"duplicates"`
	HighConfidence   int           `json:"high_confidence"`
	MediumConfidence int           `json:"medium_confidence"`
	LowConfidence    int           `json:"low_confidence"`
	Skipped          int           `json:"skipped"`
	Balances         int           `json:"balances"`
	Duration         time.Duration `json:"duration"`
	DryRun           bool          `json:"dry_run"`
}

// Add records one decision under its confidence level.
func (s *BatchStats) Add(level model.ConfidenceLevel) {
	switch level {
	case model.ConfidenceHigh:
		s.HighConfidence++
	case model.ConfidenceMedium:
		s.MediumConfidence++
	case model.ConfidenceLow:
		s.LowConfidence++
	default:
		s.Skipped++
	}
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
