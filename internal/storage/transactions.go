package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/Veraticus/rupee-flow/internal/service"
)

const transactionColumns = `id, user_id, source_message_id, account_number, transaction_type, amount,
	currency, transaction_date, description, reference_id, fingerprint, confidence_score`

// SaveBatch stores transactions and marks the consumed messages processed
// in one database transaction, so a failed batch leaves its messages
// eligible for the next run.
func (s *Store) SaveBatch(ctx context.Context, transactions []model.Transaction, processedIDs []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	if len(transactions) == 0 && len(processedIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	if len(transactions) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.rebind(`
			INSERT INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, txn := range transactions {
			if _, err := stmt.ExecContext(ctx,
				txn.ID, txn.UserID, txn.SourceMessageID, txn.AccountNumber, string(txn.Type),
				txn.Amount.String(), txn.Currency, txn.TransactionDate.UTC(), txn.Description,
				txn.ReferenceID, txn.Fingerprint, txn.Confidence,
			); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, classify(err))
			}
		}
	}

	if len(processedIDs) > 0 {
		stmt, err := tx.PrepareContext(ctx, s.rebind(`UPDATE messages SET processed = ? WHERE id = ?`))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, id := range processedIDs {
			if _, err := stmt.ExecContext(ctx, true, id); err != nil {
				return fmt.Errorf("failed to mark message %s processed: %w", id, classify(err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", classify(err))
	}
	return nil
}

// HasFingerprint reports whether a transaction with fingerprint is already
// stored for userID.
func (s *Store) HasFingerprint(ctx context.Context, userID, fingerprint string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if fingerprint == "" {
		return false, nil
	}

	var exists int
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*) FROM transactions WHERE user_id = ? AND fingerprint = ?
	`), userID, fingerprint).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", classify(err))
	}
	return exists > 0, nil
}

// ListFingerprints returns every stored (user, fingerprint) pair.
func (s *Store) ListFingerprints(ctx context.Context) ([]service.FingerprintKey, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id, fingerprint FROM transactions WHERE fingerprint <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprints: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var keys []service.FingerprintKey
	for rows.Next() {
		var k service.FingerprintKey
		if err := rows.Scan(&k.UserID, &k.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fingerprints: %w", err)
	}
	return keys, nil
}

// ListTransactions returns stored transactions matching filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, ErrInvalidLimit
	}

	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Type != "" {
		where = append(where, "transaction_type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.MinConfidence > 0 {
		where = append(where, "confidence_score >= ?")
		args = append(args, filter.MinConfidence)
	}
	if filter.StartDate != nil {
		where = append(where, "transaction_date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		where = append(where, "transaction_date <= ?")
		args = append(args, filter.EndDate.UTC())
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY transaction_date DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var (
			txn model.Transaction
			typ string
		)
		if err := rows.Scan(
			&txn.ID, &txn.UserID, &txn.SourceMessageID, &txn.AccountNumber, &typ, &txn.Amount,
			&txn.Currency, &txn.TransactionDate, &txn.Description, &txn.ReferenceID,
			&txn.Fingerprint, &txn.Confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = model.TransactionType(typ)
		txn.TransactionDate = txn.TransactionDate.UTC()
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
