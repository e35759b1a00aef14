package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

// TransactionService is the append/query front of the transaction log.
// Appends go through the ledger so the balance check happens once.
type TransactionService struct {
	ledger       *LedgerService
	store        store.LedgerStore
	defaultLimit int
	maxLimit     int
}

func NewTransactionService(ledger *LedgerService, s store.LedgerStore, defaultLimit, maxLimit int) *TransactionService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &TransactionService{
		ledger:       ledger,
		store:        s,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Append records a purchase or recharge and returns the stored entry together
// with the resulting balance.
func (ts *TransactionService) Append(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, decimal.Decimal, error) {
	if strings.TrimSpace(req.UserID) == "" || req.Type == "" || req.Amount == nil ||
		req.Amount.IsZero() || strings.TrimSpace(req.Description) == "" {
		return nil, decimal.Decimal{}, models.ErrMissingFields
	}

	change, err := ts.ledger.Post(ctx, Posting{
		UserID:      req.UserID,
		Kind:        req.Type,
		Amount:      *req.Amount,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return nil, decimal.Decimal{}, err
	}

	tx := change.Transaction
	return &tx, change.NewBalance, nil
}

// Query returns matching entries newest first. A non-positive limit means the
// default; limits above the maximum are capped.
func (ts *TransactionService) Query(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = ts.defaultLimit
	case filter.Limit > ts.maxLimit:
		filter.Limit = ts.maxLimit
	}

	txs, err := ts.store.Transactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return txs, nil
}

// ParseLimit turns the raw limit query parameter into a limit for Query.
func (ts *TransactionService) ParseLimit(raw string) (int, error) {
	if raw == "" {
		return ts.defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, models.ErrInvalidLimit
	}
	if n > ts.maxLimit {
		n = ts.maxLimit
	}
	return n, nil
}
