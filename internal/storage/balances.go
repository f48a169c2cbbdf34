package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/model"
)

// UpsertBalance records snapshot as the user's latest balance unless a newer
// one is already stored.
func (s *Store) UpsertBalance(ctx context.Context, snapshot model.BalanceSnapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBalance(&snapshot); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO balances (user_id, balance, source_message_id, reported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			balance = excluded.balance,
			source_message_id = excluded.source_message_id,
			reported_at = excluded.reported_at
		WHERE excluded.reported_at >= balances.reported_at
	`), snapshot.UserID, snapshot.Balance.String(), snapshot.SourceMessageID, snapshot.ReportedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", classify(err))
	}
	return nil
}

// GetBalance returns the latest reported balance for userID.
func (s *Store) GetBalance(ctx context.Context, userID string) (*model.BalanceSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var b model.BalanceSnapshot
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT user_id, balance, source_message_id, reported_at FROM balances WHERE user_id = ?
	`), userID).Scan(&b.UserID, &b.Balance, &b.SourceMessageID, &b.ReportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("balance for %s: %w", userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", classify(err))
	}
	b.ReportedAt = b.ReportedAt.UTC()
	return &b, nil
}
