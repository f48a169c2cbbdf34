package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
)

const messageColumns = `id, user_id, sender, body, received_at, processed`

// SaveMessages stores raw messages. Messages whose id already exists are
// left untouched, so re-importing a file is harmless.
func (s *Store) SaveMessages(ctx context.Context, messages []model.Message) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range messages {
		if err := validateMessage(&messages[i]); err != nil {
			return fmt.Errorf("message at index %d: %w", i, err)
		}
	}
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, msg := range messages {
		if _, err := stmt.ExecContext(ctx,
			msg.ID, msg.UserID, msg.Sender, msg.Body, msg.ReceivedAt.UTC(), msg.Processed,
		); err != nil {
			return fmt.Errorf("failed to insert message %s: %w", msg.ID, classify(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit messages: %w", classify(err))
	}
	return nil
}

// GetUnprocessedMessages returns up to limit unprocessed messages, oldest
// first. A limit of 0 returns all of them.
func (s *Store) GetUnprocessedMessages(ctx context.Context, limit int) ([]model.Message, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	query := `SELECT ` + messageColumns + ` FROM messages WHERE processed = ? ORDER BY received_at, id`
	args := []any{false}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		if err := scanMessage(rows, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// GetMessage returns one message by id.
func (s *Store) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+messageColumns+` FROM messages WHERE id = ?`), id)
	var msg model.Message
	if err := scanMessage(row, &msg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &msg, nil
}

// ProcessingStatus counts processed and unprocessed messages.
func (s *Store) ProcessingStatus(ctx context.Context) (*service.ProcessingStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var status service.ProcessingStatus
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN processed = ? THEN 1 ELSE 0 END), 0)
		FROM messages
	`), true).Scan(&status.TotalMessages, &status.ProcessedMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", classify(err))
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&status.Transactions); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", classify(err))
	}

	status.UnprocessedMessages = status.TotalMessages - status.ProcessedMessages
	if status.TotalMessages > 0 {
		status.ProcessedPercentage = float64(status.ProcessedMessages) / float64(status.TotalMessages) * 100
	}
	return &status, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner, msg *model.Message) error {
	if err := row.Scan(&msg.ID, &msg.UserID, &msg.Sender, &msg.Body, &msg.ReceivedAt, &msg.Processed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to scan message: %w", err)
	}
	msg.ReceivedAt = msg.ReceivedAt.UTC()
	return nil
}
