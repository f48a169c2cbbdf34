package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/rupee-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidMessage     = errors.New("invalid message")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBalance     = errors.New("invalid balance")
	ErrInvalidLimit       = errors.New("limit cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateMessage(msg *model.Message) error {
	switch {
	case msg.ID == "":
		return fmt.Errorf("%w: missing ID", ErrInvalidMessage)
	case msg.UserID == "":
		return fmt.Errorf("%w: missing user ID", ErrInvalidMessage)
	case strings.TrimSpace(msg.Body) == "":
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	case msg.ReceivedAt.IsZero():
		return fmt.Errorf("%w: missing received time", ErrInvalidMessage)
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	switch {
	case txn.ID == "":
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	case txn.UserID == "":
		return fmt.Errorf("%w: missing user ID", ErrInvalidTransaction)
	case txn.SourceMessageID == "":
		return fmt.Errorf("%w: missing source message", ErrInvalidTransaction)
	case !txn.Type.IsValid():
		return fmt.Errorf("%w: type %q", ErrInvalidTransaction, txn.Type)
	case !txn.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	case txn.Confidence < 0 || txn.Confidence > 100:
		return fmt.Errorf("%w: confidence %d out of range", ErrInvalidTransaction, txn.Confidence)
	case txn.TransactionDate.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}

func validateBalance(b *model.BalanceSnapshot) error {
	switch {
	case b.UserID == "":
		return fmt.Errorf("%w: missing user ID", ErrInvalidBalance)
	case b.Balance.IsNegative():
		return fmt.Errorf("%w: negative balance", ErrInvalidBalance)
	case b.ReportedAt.IsZero():
		return fmt.Errorf("%w: missing report time", ErrInvalidBalance)
	}
	return nil
}
