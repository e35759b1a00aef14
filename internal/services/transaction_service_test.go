package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

func newTransactionService(t *testing.T) *TransactionService {
	t.Helper()
	svc, mem := newSeededLedger(t)
	return NewTransactionService(svc, mem, 50, 500)
}

func amountPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestTransactionService_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("lunch combo purchase", func(t *testing.T) {
		ts := newTransactionService(t)

		tx, newBalance, err := ts.Append(ctx, models.CreateTransactionRequest{
			UserID:      "student1",
			Type:        models.TransactionPurchase,
			Amount:      amountPtr("-8.50"),
			Description: "Lunch Combo",
		})
		require.NoError(t, err)
		assert.Equal(t, "37.25", newBalance.StringFixed(2))
		assert.Equal(t, "37.25", tx.BalanceAfter.StringFixed(2))
		assert.Equal(t, "3", tx.ID)
		assert.Equal(t, models.DefaultLocation, tx.Location)
	})

	t.Run("keeps the given location", func(t *testing.T) {
		ts := newTransactionService(t)

		tx, _, err := ts.Append(ctx, models.CreateTransactionRequest{
			UserID:      "student2",
			Type:        models.TransactionRecharge,
			Amount:      amountPtr("20"),
			Description: "Card Recharge",
			Location:    "Online Payment",
		})
		require.NoError(t, err)
		assert.Equal(t, "Online Payment", tx.Location)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		ts := newTransactionService(t)

		_, _, err := ts.Append(ctx, models.CreateTransactionRequest{
			UserID:      "student1",
			Type:        models.TransactionPurchase,
			Amount:      amountPtr("-50"),
			Description: "Catering",
		})
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	})

	t.Run("missing fields", func(t *testing.T) {
		ts := newTransactionService(t)
		cases := map[string]models.CreateTransactionRequest{
			"no user":        {Type: models.TransactionPurchase, Amount: amountPtr("1"), Description: "x"},
			"no type":        {UserID: "student1", Amount: amountPtr("1"), Description: "x"},
			"no amount":      {UserID: "student1", Type: models.TransactionPurchase, Description: "x"},
			"zero amount":    {UserID: "student1", Type: models.TransactionPurchase, Amount: amountPtr("0"), Description: "x"},
			"no description": {UserID: "student1", Type: models.TransactionPurchase, Amount: amountPtr("1")},
		}
		for name, req := range cases {
			_, _, err := ts.Append(ctx, req)
			assert.ErrorIs(t, err, models.ErrMissingFields, name)
		}
	})
}

func TestTransactionService_Query(t *testing.T) {
	ctx := context.Background()
	ts := newTransactionService(t)

	_, _, err := ts.Append(ctx, models.CreateTransactionRequest{
		UserID: "student2", Type: models.TransactionPurchase, Amount: amountPtr("4.25"), Description: "Coffee",
	})
	require.NoError(t, err)

	t.Run("by user", func(t *testing.T) {
		txs, err := ts.Query(ctx, models.TransactionFilter{UserID: "student1"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		for _, tx := range txs {
			assert.Equal(t, "student1", tx.UserID)
		}
		assert.True(t, txs[0].Timestamp.After(txs[1].Timestamp))
	})

	t.Run("purchases are negative", func(t *testing.T) {
		txs, err := ts.Query(ctx, models.TransactionFilter{Type: "purchase"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		for _, tx := range txs {
			assert.True(t, tx.Amount.IsNegative())
		}
		assert.Equal(t, "Coffee", txs[0].Description, "newest first")
	})

	t.Run("limit", func(t *testing.T) {
		txs, err := ts.Query(ctx, models.TransactionFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})
}

func TestTransactionService_QueryAppliesLimits(t *testing.T) {
	ctx := context.Background()
	ms := &MockLedgerStore{}
	ts := NewTransactionService(NewLedgerService(ms, nil), ms, 50, 500)

	ms.On("Transactions", mock.Anything, models.TransactionFilter{Limit: 50}).Return([]models.Transaction{}, nil).Once()
	ms.On("Transactions", mock.Anything, models.TransactionFilter{Limit: 500}).Return([]models.Transaction{}, nil).Once()
	ms.On("Transactions", mock.Anything, models.TransactionFilter{UserID: "x", Limit: 3}).Return(nil, errors.New("boom")).Once()

	_, err := ts.Query(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	_, err = ts.Query(ctx, models.TransactionFilter{Limit: 10_000})
	require.NoError(t, err)
	_, err = ts.Query(ctx, models.TransactionFilter{UserID: "x", Limit: 3})
	assert.ErrorContains(t, err, "boom")

	ms.AssertExpectations(t)
}

func TestTransactionService_ParseLimit(t *testing.T) {
	ts := NewTransactionService(nil, store.NewMemoryLedger(), 50, 500)

	n, err := ts.ParseLimit("")
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	n, err = ts.ParseLimit("10")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = ts.ParseLimit("9999")
	require.NoError(t, err)
	assert.Equal(t, 500, n)

	for _, raw := range []string{"0", "-1", "ten", "1.5"} {
		_, err := ts.ParseLimit(raw)
		assert.ErrorIs(t, err, models.ErrInvalidLimit, raw)
	}
}
