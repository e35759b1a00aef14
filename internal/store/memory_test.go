package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmeal/backend/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMemoryLedger_WithinTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	err := l.WithinTx(ctx, func(tx LedgerTx) error {
		require.NoError(t, tx.PutBalance(ctx, models.Balance{UserID: "student1", Balance: dec("10.00")}))
		entry := &models.Transaction{UserID: "student1", Type: models.TransactionRecharge, Amount: dec("10")}
		require.NoError(t, tx.AppendTransaction(ctx, entry))
		assert.Equal(t, "1", entry.ID)

		// staged writes are visible inside the transaction
		b, ok, err := tx.Balance(ctx, "student1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, b.Balance.Equal(dec("10")))
		return nil
	})
	require.NoError(t, err)

	b, ok, err := l.Balance(ctx, "student1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b.Balance.Equal(dec("10")))

	n, _ := l.CountTransactions(ctx)
	assert.Equal(t, 1, n)
}

func TestMemoryLedger_WithinTx_DiscardsOnError(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	boom := errors.New("boom")

	err := l.WithinTx(ctx, func(tx LedgerTx) error {
		_ = tx.PutBalance(ctx, models.Balance{UserID: "student1", Balance: dec("10")})
		_ = tx.AppendTransaction(ctx, &models.Transaction{UserID: "student1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok, _ := l.Balance(ctx, "student1")
	assert.False(t, ok)
	n, _ := l.CountTransactions(ctx)
	assert.Zero(t, n)
}

func TestMemoryLedger_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.WithinTx(ctx, func(tx LedgerTx) error {
			return tx.AppendTransaction(ctx, &models.Transaction{UserID: "u", Timestamp: time.Now()})
		}))
	}

	txs, err := l.Transactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	ids := []string{txs[0].ID, txs[1].ID, txs[2].ID}
	assert.ElementsMatch(t, []string{"1", "2", "3"}, ids)
}

func TestMemoryLedger_TransactionsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	seed := []models.Transaction{
		{UserID: "student1", Type: models.TransactionPurchase, Amount: dec("-5"), Timestamp: base},
		{UserID: "student2", Type: models.TransactionRecharge, Amount: dec("20"), Timestamp: base.Add(time.Hour)},
		{UserID: "student1", Type: models.TransactionRecharge, Amount: dec("10"), Timestamp: base.Add(2 * time.Hour)},
		{UserID: "student1", Type: models.TransactionPurchase, Amount: dec("-3"), Timestamp: base.Add(3 * time.Hour)},
	}
	require.NoError(t, l.WithinTx(ctx, func(tx LedgerTx) error {
		for i := range seed {
			if err := tx.AppendTransaction(ctx, &seed[i]); err != nil {
				return err
			}
		}
		return nil
	}))

	t.Run("by user newest first", func(t *testing.T) {
		txs, err := l.Transactions(ctx, models.TransactionFilter{UserID: "student1"})
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, []string{"4", "3", "1"}, []string{txs[0].ID, txs[1].ID, txs[2].ID})
	})

	t.Run("by type", func(t *testing.T) {
		txs, err := l.Transactions(ctx, models.TransactionFilter{Type: "purchase"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		for _, tx := range txs {
			assert.True(t, tx.Amount.IsNegative())
		}
	})

	t.Run("all matches everything", func(t *testing.T) {
		txs, err := l.Transactions(ctx, models.TransactionFilter{Type: models.TransactionTypeAll})
		require.NoError(t, err)
		assert.Len(t, txs, 4)
	})

	t.Run("limit", func(t *testing.T) {
		txs, err := l.Transactions(ctx, models.TransactionFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "4", txs[0].ID)
	})
}

func TestMemoryLedger_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMemoryLedger().WithinTx(ctx, func(LedgerTx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryUsers_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUsers()

	u, err := s.Create(ctx, func(id int) *models.User {
		return &models.User{Name: "Admin", Email: "Admin@University.edu", Role: models.RoleAdmin}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	bal := dec("0")
	u2, err := s.Create(ctx, func(id int) *models.User {
		return &models.User{Name: "Student", Email: "s@university.edu", Role: models.RoleStudent,
			CardNumber: models.CardNumberFor(id), Balance: &bal}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, u2.ID)
	assert.Equal(t, "1234560002", u2.CardNumber)

	got, err := s.GetByEmail(ctx, "admin@university.edu")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	got, err = s.GetByCardNumber(ctx, "1234560002")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ID)

	_, err = s.GetByCardNumber(ctx, "")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = s.GetByAccountID(ctx, "")
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	got.Name = "Renamed"
	require.NoError(t, s.Update(ctx, got))
	again, _ := s.Get(ctx, 2)
	assert.Equal(t, "Renamed", again.Name)

	assert.ErrorIs(t, s.Update(ctx, &models.User{ID: 42}), models.ErrUserNotFound)

	deleted, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Admin", deleted.Name)

	_, err = s.Delete(ctx, 1)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	// next id is max + 1, not count + 1
	u3, err := s.Create(ctx, func(int) *models.User { return &models.User{Name: "C"} })
	require.NoError(t, err)
	assert.Equal(t, 3, u3.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].ID)
	assert.Equal(t, 3, list[1].ID)
}

func TestMemoryUsers_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUsers()
	bal := dec("5")
	_, err := s.Create(ctx, func(int) *models.User { return &models.User{Name: "S", Balance: &bal} })
	require.NoError(t, err)

	got, _ := s.Get(ctx, 1)
	*got.Balance = dec("999")

	again, _ := s.Get(ctx, 1)
	assert.True(t, again.Balance.Equal(dec("5")))
}

func TestMemoryUsers_EmailUniqueUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUsers()

	const workers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		taken int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, func(int) *models.User {
				return &models.User{Name: fmt.Sprintf("Dup %d", i), Email: "dup@university.edu", Role: models.RoleCashier}
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrEmailTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, taken)
	n, _ := s.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestMemoryUsers_UpdateRejectsTakenEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUsers()
	_, err := s.Create(ctx, func(int) *models.User { return &models.User{Email: "a@university.edu"} })
	require.NoError(t, err)
	b, err := s.Create(ctx, func(int) *models.User { return &models.User{Email: "b@university.edu"} })
	require.NoError(t, err)

	b.Email = "A@University.edu"
	assert.ErrorIs(t, s.Update(ctx, b), models.ErrEmailTaken)

	// keeping its own address is fine
	b.Email = "b@university.edu"
	b.Name = "Bee"
	assert.NoError(t, s.Update(ctx, b))
}
