package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

// MockLedgerStore hands fn the MockLedgerTx in Tx, so tests script both the
// outer store and what happens inside a transaction.
type MockLedgerStore struct {
	mock.Mock
	Tx *MockLedgerTx
}

func (m *MockLedgerStore) WithinTx(ctx context.Context, fn func(tx store.LedgerTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Tx)
}

func (m *MockLedgerStore) Balance(ctx context.Context, userID string) (models.Balance, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Balance), args.Bool(1), args.Error(2)
}

func (m *MockLedgerStore) Transactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockLedgerStore) CountTransactions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockLedgerTx struct {
	mock.Mock
}

func (m *MockLedgerTx) Balance(ctx context.Context, userID string) (models.Balance, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Balance), args.Bool(1), args.Error(2)
}

func (m *MockLedgerTx) PutBalance(ctx context.Context, b models.Balance) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockLedgerTx) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	args := m.Called(ctx, t)
	if id := args.String(1); id != "" {
		t.ID = id
	}
	return args.Error(0)
}
