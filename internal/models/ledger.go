package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Balances are rendered as JSON numbers (45.75), not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Balance is the current ledger position of one user.
type Balance struct {
	UserID      string          `json:"userId" db:"user_id"`
	Balance     decimal.Decimal `json:"balance" db:"balance"`
	LastUpdated time.Time       `json:"lastUpdated" db:"updated_at"`
}

// BalanceChange is the outcome of one accepted ledger mutation.
type BalanceChange struct {
	UserID          string          `json:"userId"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	AmountChanged   decimal.Decimal `json:"amountChanged"`
	Transaction     Transaction     `json:"-"`
}
