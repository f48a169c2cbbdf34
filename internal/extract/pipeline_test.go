package extract

import (
	"sync"
	"testing"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractWithConfidence(t *testing.T) {
	extractor := NewDefault()

	t.Run("bank of baroda credit", func(t *testing.T) {
		d := extractor.ExtractWithConfidence(model.Message{Body: bobCreditSMS, Sender: "VM-BOBTXN"})

		assert.True(t, d.IsTransaction)
		assert.Equal(t, model.MessageTypeTransaction, d.MessageType)
		require.True(t, d.Amount.Valid)
		assert.True(t, decimal.NewFromInt(6000).Equal(d.Amount.Decimal))
		assert.Equal(t, model.TransactionCredit, d.TransactionType)
		assert.Equal(t, "9212", d.AccountNumber)
		assert.Equal(t, "511857530160", d.ReferenceID)
		assert.GreaterOrEqual(t, d.Confidence, 90)
		assert.Equal(t, "6000_9212_atodariyadharme_credit_28-04-2025 07:40:39", d.Fingerprint)
		assert.Len(t, d.StrategyResults, 4)
		assert.Empty(t, d.Reason)
	})

	t.Run("debit with cautionary text", func(t *testing.T) {
		d := extractor.ExtractWithConfidence(model.Message{Body: bobDebitSMS})

		assert.True(t, d.IsTransaction)
		require.True(t, d.Amount.Valid)
		assert.True(t, decimal.NewFromInt(40).Equal(d.Amount.Decimal))
		assert.Equal(t, model.TransactionDebit, d.TransactionType)
		assert.Equal(t, "9212", d.AccountNumber)
		assert.Equal(t, "409594145449", d.ReferenceID)
	})

	t.Run("balance is never the transaction amount", func(t *testing.T) {
		d := extractor.ExtractWithConfidence(model.Message{Body: debitWithBalanceSMS})

		require.True(t, d.Amount.Valid)
		assert.True(t, decimal.NewFromInt(500).Equal(d.Amount.Decimal))
		assert.Equal(t, model.TransactionDebit, d.TransactionType)
	})

	t.Run("debit within balance window is not extracted", func(t *testing.T) {
		d := extractor.ExtractWithConfidence(model.Message{Body: debitNearBalanceSMS, Sender: "VK-HDFCBK"})

		assert.True(t, d.IsTransaction)
		assert.False(t, d.Amount.Valid, "amount %s", d.Amount.Decimal)
		assert.Zero(t, d.Confidence)
		assert.False(t, model.DefaultConfidenceThresholds().Accepts(d))
	})

	tests := []struct {
		name     string
		body     string
		sender   string
		wantType model.MessageType
	}{
		{name: "telecom", body: jioDataSMS, wantType: model.MessageTypeTelecom},
		{name: "otp", body: jugnooOTP, wantType: model.MessageTypeOTP},
		{name: "spam", body: "Your instant loan of Rs 50000 is ready to be credited to your bank account", wantType: model.MessageTypePromotional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := extractor.ExtractWithConfidence(model.Message{Body: tt.body, Sender: tt.sender})

			assert.False(t, d.IsTransaction)
			assert.Equal(t, tt.wantType, d.MessageType)
			assert.Zero(t, d.Confidence)
			assert.False(t, d.Amount.Valid)
			assert.Equal(t, model.NotTransactionReason, d.Reason)
			assert.Equal(t, model.UnknownAccount, d.AccountNumber)
			assert.Empty(t, d.StrategyResults)
		})
	}

	t.Run("transaction without amount", func(t *testing.T) {
		d := extractor.ExtractWithConfidence(model.Message{Body: "Rs 0 credited to your account"})

		assert.True(t, d.IsTransaction)
		assert.False(t, d.Amount.Valid)
		assert.Zero(t, d.Confidence)
		assert.Equal(t, model.UnknownAccount, d.AccountNumber)
	})
}

func TestExtractor_ConfidenceBounds(t *testing.T) {
	extractor := NewDefault()
	bodies := []string{
		bobCreditSMS,
		bobDebitSMS,
		jioDataSMS,
		jugnooOTP,
		debitWithBalanceSMS,
		debitNearBalanceSMS,
		"Rs 99999999 credited",
		"INR 1 paid",
		"Rs.0.5 debited from a/c XX0001 UPI Ref:1",
		"",
	}

	for _, body := range bodies {
		d := extractor.ExtractWithConfidence(model.Message{Body: body})
		assert.GreaterOrEqual(t, d.Confidence, 0, body)
		assert.LessOrEqual(t, d.Confidence, 100, body)
		if !d.IsTransaction {
			assert.Zero(t, d.Confidence, body)
		}
		if d.Amount.Valid {
			assert.True(t, d.Amount.Decimal.IsPositive(), body)
		}
	}
}

func TestExtractor_DuplicateMessagesShareFingerprint(t *testing.T) {
	extractor := NewDefault()

	first := extractor.ExtractWithConfidence(model.Message{ID: "1", Body: bobCreditSMS, Sender: "VM-BOBTXN"})
	second := extractor.ExtractWithConfidence(model.Message{ID: "2", Body: bobCreditSMS, Sender: "AD-BOBSMS"})

	assert.NotEmpty(t, first.Fingerprint)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestExtractor_ConcurrentUse(t *testing.T) {
	extractor := NewDefault()
	want := extractor.ExtractWithConfidence(model.Message{Body: bobCreditSMS, Sender: "VM-BOBTXN"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := extractor.ExtractWithConfidence(model.Message{Body: bobCreditSMS, Sender: "VM-BOBTXN"})
			assert.Equal(t, want.Confidence, got.Confidence)
			assert.Equal(t, want.Fingerprint, got.Fingerprint)
		}()
	}
	wg.Wait()
}

func TestNew_InvalidVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	v.SpamIndicators = []string{`(`}

	_, err := New(v)
	require.Error(t, err)
}
