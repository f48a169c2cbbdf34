// Package model defines the core domain models used throughout the application.
package model

import "github.com/shopspring/decimal"

// TransactionType is the direction of money movement. The zero value means
// the direction could not be determined.
type TransactionType string

// Transaction type constants.
const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// IsValid reports whether t is credit or debit.
func (t TransactionType) IsValid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

// UnknownAccount is recorded when no strategy could find an account suffix.
const UnknownAccount = "unknown"

// NotTransactionReason is the reason attached to decisions for messages the
// classifier did not label as transactions.
const NotTransactionReason = "Not classified as transaction"

// StrategyResult is one extraction strategy's partial view of a message.
type StrategyResult struct {
	Amount     decimal.NullDecimal `json:"amount"`
	Strategy   string              `json:"strategy"`
	Type       TransactionType     `json:"type,omitempty"`
	Account    string              `json:"account,omitempty"`
	Confidence int                 `json:"confidence"`
}

// HasAmount reports whether the strategy produced a usable amount.
func (r StrategyResult) HasAmount() bool {
	return r.Amount.Valid && r.Amount.Decimal.IsPositive()
}

// ExtractionDecision is the final structured result for one message.
type ExtractionDecision struct {
	Amount          decimal.NullDecimal `json:"amount"`
	MessageType     MessageType         `json:"message_type"`
	TransactionType TransactionType     `json:"transaction_type,omitempty"`
	AccountNumber   string              `json:"account_number,omitempty"`
	ReferenceID     string              `json:"reference_id,omitempty"`
	Fingerprint     string              `json:"fingerprint,omitempty"`
	Reason          string              `json:"reason,omitempty"`
	StrategyResults []StrategyResult    `json:"strategy_results,omitempty"`
	Confidence      int                 `json:"confidence"`
	IsTransaction   bool                `json:"is_transaction"`
}

// ConfidenceLevel buckets a confidence score for reporting and filtering.
type ConfidenceLevel string

// Confidence level constants.
const (
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceSkipped ConfidenceLevel = "skipped"
)

// ConfidenceThresholds are the floors for the high and medium buckets.
type ConfidenceThresholds struct {
	High   int
	Medium int
}

// DefaultConfidenceThresholds returns the stock 80/50 floors.
func DefaultConfidenceThresholds() ConfidenceThresholds {
	return ConfidenceThresholds{High: 80, Medium: 50}
}

// Level classifies a confidence score.
func (t ConfidenceThresholds) Level(confidence int) ConfidenceLevel {
	switch {
	case confidence >= t.High:
		return ConfidenceHigh
	case confidence >= t.Medium:
		return ConfidenceMedium
	case confidence > 0:
		return ConfidenceLow
	default:
		return ConfidenceSkipped
	}
}

// Accepts reports whether a decision is complete enough to persist and
// clears the medium floor.
func (t ConfidenceThresholds) Accepts(d ExtractionDecision) bool {
	return d.IsTransaction && d.Amount.Valid && d.TransactionType.IsValid() && d.Confidence >= t.Medium
}
