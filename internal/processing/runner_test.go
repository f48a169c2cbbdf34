package processing

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/extract"
	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/Veraticus/rupee-flow/internal/testutil"
	"github.com/Veraticus/rupee-flow/internal/testutil/messages"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(db *testutil.TestDB, opts Options) *Runner {
	return NewRunner(db.Storage, extract.NewDefault(), opts)
}

func countingCollector() *recordingCollector {
	return &recordingCollector{duplicates: make(map[string]int)}
}

type recordingCollector struct {
	metrics.NoOpCollector
	duplicates  map[string]int
	mu          sync.Mutex
	extractions int
	batches     int
}

func (c *recordingCollector) RecordExtraction(model.MessageType, model.ConfidenceLevel, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extractions++
}

func (c *recordingCollector) RecordDuplicate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duplicates[source]++
}

func (c *recordingCollector) RecordBatch(int, int, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches++
}

type failingSink struct{ err error }

func (f failingSink) SaveBatch(context.Context, []model.Transaction, []string) error {
	return f.err
}

func TestRunner_ProcessBatch_MixedInbox(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithFixture(messages.FixtureMixedInbox)
	})
	collector := countingCollector()
	runner := newRunner(db, Options{Metrics: collector, Workers: 3})
	ctx := context.Background()

	stats, err := runner.ProcessBatch(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Messages)
	assert.Equal(t, 3, stats.NonTransactions, "telecom, otp and spam")
	assert.GreaterOrEqual(t, stats.Transactions, 1)
	assert.LessOrEqual(t, stats.Transactions, 3)
	assert.Equal(t, stats.Messages,
		stats.HighConfidence+stats.MediumConfidence+stats.LowConfidence+stats.Skipped)
	assert.False(t, stats.DryRun)

	stored, err := db.Storage.ListTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, stats.Transactions)

	var credit *model.Transaction
	for i := range stored {
		assert.GreaterOrEqual(t, stored[i].Confidence, 50)
		if stored[i].SourceMessageID == "test-user-1" {
			credit = &stored[i]
		}
	}
	require.NotNil(t, credit, "bank of baroda credit is persisted")
	assert.True(t, decimal.NewFromInt(6000).Equal(credit.Amount))
	assert.Equal(t, model.TransactionCredit, credit.Type)
	assert.Equal(t, "9212", credit.AccountNumber)
	assert.Equal(t, model.DefaultCurrency, credit.Currency)
	assert.Equal(t, messages.BaseTime, credit.TransactionDate)

	remaining, err := db.Storage.GetUnprocessedMessages(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining, "every fetched message is marked processed")

	assert.Equal(t, 6, collector.extractions)
	assert.Equal(t, 1, collector.batches)
}

func TestRunner_ProcessBatch_Duplicates(t *testing.T) {
	ctx := context.Background()

	t.Run("same alert twice in one batch", func(t *testing.T) {
		db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
			return b.WithFixture(messages.FixtureDuplicateAlerts)
		})
		collector := countingCollector()

		stats, err := newRunner(db, Options{Metrics: collector}).ProcessBatch(ctx, 0)
		require.NoError(t, err)

		assert.Equal(t, 1, stats.Transactions)
		assert.Equal(t, 1, stats.Duplicates)
		assert.Equal(t, 1, collector.duplicates[metrics.DuplicateBatch])
	})

	t.Run("alerts without rupee amount never collide", func(t *testing.T) {
		db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
			return b.WithBody("VK-HDFCBK", "Your A/c XX1234 debited with INR 1,250.00 for bill payment").
				WithBody("VK-HDFCBK", "Your A/c XX1234 debited with INR 900.00 for bill payment")
		})

		stats, err := newRunner(db, Options{}).ProcessBatch(ctx, 0)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Transactions)
		assert.Zero(t, stats.Duplicates)
	})

	t.Run("same alert for different users", func(t *testing.T) {
		db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
			return b.ForUser("alice").WithSample(messages.SampleBOBCredit).
				ForUser("bob").WithSample(messages.SampleBOBCredit)
		})

		stats, err := newRunner(db, Options{}).ProcessBatch(ctx, 0)
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Transactions)
		assert.Zero(t, stats.Duplicates)
	})

	t.Run("alert resent after an earlier run", func(t *testing.T) {
		db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
			return b.WithSample(messages.SampleBOBCredit)
		})
		collector := countingCollector()
		runner := newRunner(db, Options{Metrics: collector})

		_, err := runner.ProcessBatch(ctx, 0)
		require.NoError(t, err)

		require.NoError(t, db.Storage.SaveMessages(ctx, []model.Message{{
			ID:         "resent",
			UserID:     messages.DefaultUser,
			Sender:     messages.Sender(messages.SampleBOBCredit),
			Body:       messages.Body(messages.SampleBOBCredit),
			ReceivedAt: messages.BaseTime.Add(time.Hour),
		}}))

		stats, err := runner.ProcessBatch(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Messages)
		assert.Zero(t, stats.Transactions)
		assert.Equal(t, 1, stats.Duplicates)
		assert.Equal(t, 1, collector.duplicates[metrics.DuplicatePersisted])

		assert.True(t, db.MustGetMessage("resent").Processed)
	})
}

func TestRunner_ProcessBatch_RecordsBalance(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithSample(messages.SampleBOBCredit)
	})
	ctx := context.Background()

	stats, err := newRunner(db, Options{}).ProcessBatch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Balances)

	balance, err := db.Storage.GetBalance(ctx, messages.DefaultUser)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("6106.44").Equal(balance.Balance), "balance = %s", balance.Balance)
	assert.Equal(t, "test-user-1", balance.SourceMessageID)
}

func TestRunner_ProcessBatch_DryRun(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithSamples(messages.SampleBOBCredit, messages.SampleJioData)
	})
	ctx := context.Background()

	stats, err := newRunner(db, Options{DryRun: true}).ProcessBatch(ctx, 0)
	require.NoError(t, err)
	assert.True(t, stats.DryRun)
	assert.Equal(t, 1, stats.Transactions)

	status, err := db.Storage.ProcessingStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.ProcessedMessages)
	assert.Zero(t, status.Transactions)
}

func TestRunner_ProcessBatch_Limit(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithFixture(messages.FixtureMixedInbox)
	})
	ctx := context.Background()

	stats, err := newRunner(db, Options{}).ProcessBatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Messages)

	remaining, err := db.Storage.GetUnprocessedMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 4)
	assert.Equal(t, "test-user-3", remaining[0].ID, "oldest messages go first")
}

func TestRunner_ProcessBatch_NoMessages(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)

	stats, err := newRunner(db, Options{}).ProcessBatch(context.Background(), 0)
	assert.ErrorIs(t, err, common.ErrNoMessages)
	require.NotNil(t, stats)
	assert.Zero(t, stats.Messages)
}

func TestRunner_ProcessBatch_SinkFailure(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithSample(messages.SampleBOBCredit)
	})
	sinkErr := errors.New("disk full")
	ctx := context.Background()

	_, err := newRunner(db, Options{Sink: failingSink{err: sinkErr}}).ProcessBatch(ctx, 0)
	assert.ErrorIs(t, err, sinkErr)

	remaining, err := db.Storage.GetUnprocessedMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "failed batches stay eligible for the next run")

	_, err = db.Storage.GetBalance(ctx, messages.DefaultUser)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRunner_ProcessBatch_Cancelled(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithFixture(messages.FixtureBankOnly)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(db, Options{}).ProcessBatch(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_ProcessBatch_Progress(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithFixture(messages.FixtureBankOnly)
	})
	var out bytes.Buffer

	_, err := newRunner(db, Options{Progress: &out}).ProcessBatch(context.Background(), 0)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Extracting transactions")
}

func TestRunner_ProcessMessage(t *testing.T) {
	db := testutil.SetupTestDBWithBuilder(t, func(b messages.Builder) messages.Builder {
		return b.WithSamples(messages.SampleBOBCredit, messages.SampleJugnooOTP)
	})
	runner := newRunner(db, Options{})
	ctx := context.Background()

	outcome, err := runner.ProcessMessage(ctx, "test-user-1")
	require.NoError(t, err)
	assert.Equal(t, "test-user-1", outcome.MessageID)
	assert.Equal(t, model.ConfidenceHigh, outcome.Level)
	require.NotNil(t, outcome.Transaction)
	assert.Equal(t, model.TransactionCredit, outcome.Transaction.Type)
	assert.True(t, db.MustGetMessage("test-user-1").Processed)
	assert.False(t, db.MustGetMessage("test-user-2").Processed, "other messages are untouched")

	_, err = runner.ProcessMessage(ctx, "test-user-1")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	otp, err := runner.ProcessMessage(ctx, "test-user-2")
	require.NoError(t, err)
	assert.Nil(t, otp.Transaction)
	assert.Equal(t, model.MessageTypeOTP, otp.Decision.MessageType)
	assert.Equal(t, model.ConfidenceSkipped, otp.Level)

	_, err = runner.ProcessMessage(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
