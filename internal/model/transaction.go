package model

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency assigned to every extracted transaction.
const DefaultCurrency = "INR"

// maxDescriptionRunes bounds the message text copied into a transaction.
const maxDescriptionRunes = 200

// Transaction represents a transaction extracted from an SMS and accepted
// for persistence.
type Transaction struct {
	TransactionDate time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	SourceMessageID string          `json:"source_message_id"`
	AccountNumber   string          `json:"account_number"`
	Type            TransactionType `json:"transaction_type"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Fingerprint     string          `json:"fingerprint"`
	Confidence      int             `json:"confidence_score"`
}

// NewTransaction builds a transaction record from an accepted decision.
// The caller supplies the id so record creation stays deterministic in tests.
func NewTransaction(id string, msg Message, d ExtractionDecision) Transaction {
	account := d.AccountNumber
	if account == "" {
		account = UnknownAccount
	}
	return Transaction{
		ID:              id,
		UserID:          msg.UserID,
		SourceMessageID: msg.ID,
		AccountNumber:   account,
		Type:            d.TransactionType,
		Amount:          d.Amount.Decimal,
		Currency:        DefaultCurrency,
		TransactionDate: msg.ReceivedAt,
		Description:     Truncate(msg.Body, maxDescriptionRunes),
		ReferenceID:     d.ReferenceID,
		Fingerprint:     d.Fingerprint,
		Confidence:      d.Confidence,
	}
}

// BalanceSnapshot is the most recent balance a bank reported for a user.
type BalanceSnapshot struct {
	ReportedAt      time.Time       `json:"reported_at"`
	Balance         decimal.Decimal `json:"balance"`
	UserID          string          `json:"user_id"`
	SourceMessageID string          `json:"source_message_id"`
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
