package model

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConfidenceThresholds_Level(t *testing.T) {
	thresholds := DefaultConfidenceThresholds()

	tests := []struct {
		confidence int
		want       ConfidenceLevel
	}{
		{confidence: 100, want: ConfidenceHigh},
		{confidence: 80, want: ConfidenceHigh},
		{confidence: 79, want: ConfidenceMedium},
		{confidence: 50, want: ConfidenceMedium},
		{confidence: 49, want: ConfidenceLow},
		{confidence: 1, want: ConfidenceLow},
		{confidence: 0, want: ConfidenceSkipped},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, thresholds.Level(tt.confidence), "confidence %d", tt.confidence)
	}
}

func TestConfidenceThresholds_Accepts(t *testing.T) {
	thresholds := DefaultConfidenceThresholds()
	accepted := ExtractionDecision{
		IsTransaction:   true,
		Amount:          decimal.NewNullDecimal(decimal.NewFromInt(500)),
		TransactionType: TransactionDebit,
		Confidence:      50,
	}

	tests := []struct {
		name   string
		mutate func(*ExtractionDecision)
		want   bool
	}{
		{name: "complete at the floor", mutate: func(*ExtractionDecision) {}, want: true},
		{name: "below the floor", mutate: func(d *ExtractionDecision) { d.Confidence = 49 }},
		{name: "not a transaction", mutate: func(d *ExtractionDecision) { d.IsTransaction = false }},
		{name: "no amount", mutate: func(d *ExtractionDecision) { d.Amount = decimal.NullDecimal{} }},
		{name: "no direction", mutate: func(d *ExtractionDecision) { d.TransactionType = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := accepted
			tt.mutate(&d)
			assert.Equal(t, tt.want, thresholds.Accepts(d))
		})
	}
}

func TestNewTransaction(t *testing.T) {
	received := time.Date(2025, 4, 28, 7, 40, 39, 0, time.UTC)
	msg := Message{ID: "m1", UserID: "alice", Body: strings.Repeat("x", 250), ReceivedAt: received}
	d := ExtractionDecision{
		IsTransaction:   true,
		Amount:          decimal.NewNullDecimal(decimal.RequireFromString("40.00")),
		TransactionType: TransactionDebit,
		ReferenceID:     "409594145449",
		Fingerprint:     "fp",
		Confidence:      95,
	}

	txn := NewTransaction("t1", msg, d)

	assert.Equal(t, "t1", txn.ID)
	assert.Equal(t, "alice", txn.UserID)
	assert.Equal(t, "m1", txn.SourceMessageID)
	assert.Equal(t, UnknownAccount, txn.AccountNumber)
	assert.Equal(t, DefaultCurrency, txn.Currency)
	assert.Equal(t, received, txn.TransactionDate)
	assert.Len(t, txn.Description, 200)
	assert.True(t, decimal.NewFromInt(40).Equal(txn.Amount))
	assert.Equal(t, "409594145449", txn.ReferenceID)
	assert.Equal(t, 95, txn.Confidence)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "₹₹", Truncate("₹₹₹", 2), "counts runes, not bytes")
}

func TestTypes_IsValid(t *testing.T) {
	assert.True(t, TransactionCredit.IsValid())
	assert.True(t, TransactionDebit.IsValid())
	assert.False(t, TransactionType("refund").IsValid())
	assert.True(t, MessageTypeSecurityAlert.IsValid())
	assert.False(t, MessageType("spam").IsValid())
}
