// Package store holds the persistence backends for the ledger and the user
// directory. Every backend serialises ledger mutations, so a LedgerTx always
// sees the latest committed state.
package store

import (
	"context"

	"github.com/campusmeal/backend/internal/models"
)

// LedgerStore keeps balances and the transaction log side by side so one
// mutation can change both atomically.
type LedgerStore interface {
	// WithinTx runs fn with exclusive write access. Changes made through tx are
	// committed only when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
	// Balance returns the stored record and whether one exists.
	Balance(ctx context.Context, userID string) (models.Balance, bool, error)
	// Transactions returns matching entries newest first, at most filter.Limit
	// when it is positive.
	Transactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	CountTransactions(ctx context.Context) (int, error)
}

type LedgerTx interface {
	Balance(ctx context.Context, userID string) (models.Balance, bool, error)
	PutBalance(ctx context.Context, b models.Balance) error
	// AppendTransaction assigns the next sequential id to t and stores it.
	AppendTransaction(ctx context.Context, t *models.Transaction) error
}

// UserStore is the directory backend. Lookups of a missing record return
// models.ErrUserNotFound.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByCardNumber(ctx context.Context, cardNumber string) (*models.User, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.User, error)
	// Create reserves the next id (max + 1, 1 when empty) and stores the user
	// returned by build.
	Create(ctx context.Context, build func(id int) *models.User) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int) (*models.User, error)
	Count(ctx context.Context) (int, error)
}
