package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionRecharge TransactionType = "recharge"

	// TransactionTypeAll is the query wildcard.
	TransactionTypeAll = "all"

	DefaultLocation = "Unknown"
)

// Valid reports whether t is one of the ledger transaction kinds.
func (t TransactionType) Valid() bool {
	return t == TransactionPurchase || t == TransactionRecharge
}

// Transaction is one immutable entry of the transaction log.
type Transaction struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"userId" db:"user_id"`
	Type         TransactionType `json:"type" db:"type"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Description  string          `json:"description" db:"description"`
	Location     string          `json:"location" db:"location"`
	Timestamp    time.Time       `json:"timestamp" db:"created_at"`
	BalanceAfter decimal.Decimal `json:"balanceAfter" db:"balance_after"`
}

// TransactionFilter narrows a transaction log query. Empty fields match everything.
type TransactionFilter struct {
	UserID string
	Type   string
	Limit  int
}

// Matches reports whether tx passes the userId and type filters.
func (f TransactionFilter) Matches(tx Transaction) bool {
	if f.UserID != "" && tx.UserID != f.UserID {
		return false
	}
	if f.Type != "" && f.Type != TransactionTypeAll && string(tx.Type) != f.Type {
		return false
	}
	return true
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	UserID      string           `json:"userId" validate:"required"`
	Type        TransactionType  `json:"type" validate:"required,oneof=purchase recharge"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Location    string           `json:"location,omitempty"`
}

// UpdateBalanceRequest is the body of POST /balance.
type UpdateBalanceRequest struct {
	UserID string           `json:"userId" validate:"required"`
	Amount *decimal.Decimal `json:"amount" validate:"required"`
	Type   TransactionType  `json:"type,omitempty" validate:"omitempty,oneof=purchase recharge"`
}
