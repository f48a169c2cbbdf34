// Package processing turns stored messages into persisted transactions.
package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/dedup"
	"github.com/Veraticus/rupee-flow/internal/extract"
	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyProcessed is returned by ProcessMessage for a message that an
// earlier run already consumed.
var ErrAlreadyProcessed = errors.New("message already processed")

// Options configures a Runner.
type Options struct {
	Thresholds        model.ConfidenceThresholds
	Sink              service.BatchSink // defaults to the storage itself
	Metrics           metrics.Collector
	Progress          io.Writer // progress bar destination; nil disables it
	Workers           int
	FalsePositiveRate float64
	DryRun            bool
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Thresholds:        model.DefaultConfidenceThresholds(),
		Workers:           4,
		FalsePositiveRate: 0.001,
	}
}

// Outcome is what happened to one message.
type Outcome struct {
	Transaction *model.Transaction       `json:"transaction,omitempty"`
	MessageID   string                   `json:"message_id"`
	Decision    model.ExtractionDecision `json:"decision"`
	Level       model.ConfidenceLevel    `json:"confidence_level"`
	Duplicate   bool                     `json:"duplicate"`
}

// Runner extracts, deduplicates and persists unprocessed messages.
type Runner struct {
	store     service.Storage
	sink      service.BatchSink
	extractor *extract.Extractor
	metrics   metrics.Collector
	opts      Options
}

// NewRunner creates a runner. Zero-valued options fall back to DefaultOptions.
func NewRunner(store service.Storage, extractor *extract.Extractor, opts Options) *Runner {
	defaults := DefaultOptions()
	if opts.Thresholds == (model.ConfidenceThresholds{}) {
		opts.Thresholds = defaults.Thresholds
	}
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.FalsePositiveRate <= 0 || opts.FalsePositiveRate >= 1 {
		opts.FalsePositiveRate = defaults.FalsePositiveRate
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOpCollector{}
	}
	sink := opts.Sink
	if sink == nil {
		sink = store
	}
	return &Runner{
		store:     store,
		sink:      sink,
		extractor: extractor,
		metrics:   opts.Metrics,
		opts:      opts,
	}
}

// ProcessBatch processes up to limit unprocessed messages, oldest first. A
// limit of 0 processes the whole backlog. It returns common.ErrNoMessages
// when there is nothing to do.
func (r *Runner) ProcessBatch(ctx context.Context, limit int) (*service.BatchStats, error) {
	msgs, err := r.store.GetUnprocessedMessages(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unprocessed messages: %w", err)
	}
	if len(msgs) == 0 {
		slog.Info("No messages to process")
		return &service.BatchStats{DryRun: r.opts.DryRun}, common.ErrNoMessages
	}

	stats, _, err := r.run(ctx, msgs)
	return stats, err
}

// ProcessMessage processes a single stored message.
func (r *Runner) ProcessMessage(ctx context.Context, id string) (*Outcome, error) {
	msg, err := r.store.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Processed {
		return nil, fmt.Errorf("message %s: %w", id, ErrAlreadyProcessed)
	}

	_, outcomes, err := r.run(ctx, []model.Message{*msg})
	if err != nil {
		return nil, err
	}
	return &outcomes[0], nil
}

func (r *Runner) run(ctx context.Context, msgs []model.Message) (*service.BatchStats, []Outcome, error) {
	start := time.Now()

	slog.Info("Starting message processing",
		"messages", len(msgs),
		"workers", r.opts.Workers,
		"dry_run", r.opts.DryRun)

	decisions, err := r.extractAll(ctx, msgs)
	if err != nil {
		return nil, nil, err
	}

	keys, err := r.store.ListFingerprints(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load fingerprints: %w", err)
	}
	persisted := dedup.NewPersistedFilterFrom(keys, r.opts.FalsePositiveRate)
	seen := dedup.NewSeenSet(dedup.DefaultShards)

	stats := &service.BatchStats{Messages: len(msgs), DryRun: r.opts.DryRun}
	outcomes := make([]Outcome, len(msgs))
	ids := make([]string, len(msgs))
	var (
		transactions []model.Transaction
		accepted     []int
	)
	balances := make(map[string]model.BalanceSnapshot)

	for i, msg := range msgs {
		d := decisions[i]
		ids[i] = msg.ID
		level := r.opts.Thresholds.Level(d.Confidence)
		stats.Add(level)
		outcomes[i] = Outcome{MessageID: msg.ID, Decision: d, Level: level}

		if !d.IsTransaction {
			stats.NonTransactions++
			continue
		}
		if !r.opts.Thresholds.Accepts(d) {
			continue
		}

		duplicate, err := r.isDuplicate(ctx, seen, persisted, msg.UserID, d.Fingerprint)
		if err != nil {
			return nil, nil, err
		}
		if duplicate {
			stats.Duplicates++
			outcomes[i].Duplicate = true
			continue
		}

		txn := model.NewTransaction(uuid.NewString(), msg, d)
		transactions = append(transactions, txn)
		accepted = append(accepted, i)
		if extract.HasIdentity(d.Fingerprint) {
			persisted.Add(msg.UserID, d.Fingerprint)
		}

		if balance := extract.ExtractBalance(msg.Body); balance.Valid {
			prev, ok := balances[msg.UserID]
			if !ok || !msg.ReceivedAt.Before(prev.ReportedAt) {
				balances[msg.UserID] = model.BalanceSnapshot{
					UserID:          msg.UserID,
					Balance:         balance.Decimal,
					SourceMessageID: msg.ID,
					ReportedAt:      msg.ReceivedAt,
				}
			}
		}
	}
	stats.Transactions = len(transactions)

	for j, i := range accepted {
		outcomes[i].Transaction = &transactions[j]
	}

	if !r.opts.DryRun {
		if err := r.sink.SaveBatch(ctx, transactions, ids); err != nil {
			return nil, nil, fmt.Errorf("failed to save batch: %w", err)
		}
		stats.Balances = r.saveBalances(ctx, balances)
	}

	stats.Duration = time.Since(start)
	r.metrics.RecordBatch(stats.Messages, stats.Transactions, stats.Duration)

	slog.Info("Message processing complete",
		"messages", stats.Messages,
		"transactions", stats.Transactions,
		"non_transactions", stats.NonTransactions,
		"duplicates", stats.Duplicates,
		"high_confidence", stats.HighConfidence,
		"medium_confidence", stats.MediumConfidence,
		"low_confidence", stats.LowConfidence,
		"duration", stats.Duration)

	return stats, outcomes, nil
}

// extractAll runs the extractor over msgs on a bounded worker pool. Results
// keep message order.
func (r *Runner) extractAll(ctx context.Context, msgs []model.Message) ([]model.ExtractionDecision, error) {
	decisions := make([]model.ExtractionDecision, len(msgs))
	bar := r.newProgressBar(len(msgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, msg := range msgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			d := r.extractor.ExtractWithConfidence(msg)
			decisions[i] = d
			r.metrics.RecordExtraction(d.MessageType, r.opts.Thresholds.Level(d.Confidence), time.Since(start))

			if bar != nil {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}
	return decisions, nil
}

// isDuplicate checks the in-batch set first, then the persisted filter. A
// bloom hit is only trusted once storage confirms it. Fingerprints without
// an identity are never duplicates.
func (r *Runner) isDuplicate(ctx context.Context, seen *dedup.SeenSet, persisted *dedup.PersistedFilter, userID, fingerprint string) (bool, error) {
	if !extract.HasIdentity(fingerprint) {
		return false, nil
	}
	if !seen.MarkSeen(userID, fingerprint) {
		r.metrics.RecordDuplicate(metrics.DuplicateBatch)
		return true, nil
	}
	if !persisted.MayContain(userID, fingerprint) {
		return false, nil
	}
	exists, err := r.store.HasFingerprint(ctx, userID, fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	if exists {
		r.metrics.RecordDuplicate(metrics.DuplicatePersisted)
	}
	return exists, nil
}

// saveBalances records the latest balance per user. Failures are logged,
// not returned: the transactions are already committed.
func (r *Runner) saveBalances(ctx context.Context, balances map[string]model.BalanceSnapshot) int {
	users := make([]string, 0, len(balances))
	for user := range balances {
		users = append(users, user)
	}
	sort.Strings(users)

	saved := 0
	for _, user := range users {
		if err := r.store.UpsertBalance(ctx, balances[user]); err != nil {
			slog.Warn("Failed to record balance",
				"user_id", user,
				"error", err)
			continue
		}
		saved++
	}
	return saved
}

func (r *Runner) newProgressBar(total int) *progressbar.ProgressBar {
	if r.opts.Progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.opts.Progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Extracting transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.opts.Progress); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
