package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/audit"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

var ledgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mealcard_ledger_mutations_total",
	Help: "Ledger mutations processed, labeled by kind and outcome",
}, []string{"kind", "outcome"})

const (
	descBalanceAdjustment = "Balance adjustment"
	descCardRecharge      = "Card Recharge"
)

// Posting is one requested balance mutation.
type Posting struct {
	UserID      string
	Kind        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Location    string
}

// LedgerService is the only writer of balances. Every accepted mutation
// updates the balance and appends exactly one transaction in the same store
// transaction.
type LedgerService struct {
	store  store.LedgerStore
	audit  *audit.Logger
	logger *zap.Logger
	now    func() time.Time
}

func NewLedgerService(s store.LedgerStore, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		store:  s,
		audit:  audit.NewLogger(logger),
		logger: logger.Named("ledger"),
		now:    time.Now,
	}
}

// GetBalance returns the current balance, zero for users never seen before.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (models.Balance, error) {
	b, ok, err := s.store.Balance(ctx, userID)
	if err != nil {
		return models.Balance{}, fmt.Errorf("get balance: %w", err)
	}
	if !ok {
		return models.Balance{UserID: userID, Balance: decimal.Zero, LastUpdated: s.now().UTC()}, nil
	}
	return b, nil
}

// ApplyDelta mutates a balance directly. The mutation is still logged, with a
// generic description.
func (s *LedgerService) ApplyDelta(ctx context.Context, userID string, amount decimal.Decimal, kind models.TransactionType) (*models.BalanceChange, error) {
	desc := descBalanceAdjustment
	if kind == models.TransactionRecharge {
		desc = descCardRecharge
	}
	return s.Post(ctx, Posting{UserID: userID, Kind: kind, Amount: amount, Description: desc})
}

// Post validates and applies p.
func (s *LedgerService) Post(ctx context.Context, p Posting) (*models.BalanceChange, error) {
	signed, err := signedAmount(p.Amount, p.Kind)
	if err != nil {
		s.reject(p, err)
		return nil, err
	}
	if p.Location == "" {
		p.Location = models.DefaultLocation
	}

	var change *models.BalanceChange
	err = s.store.WithinTx(ctx, func(tx store.LedgerTx) error {
		current, _, err := tx.Balance(ctx, p.UserID)
		if err != nil {
			return err
		}
		prev := current.Balance

		if p.Kind == models.TransactionPurchase && prev.LessThan(signed.Abs()) {
			return models.ErrInsufficientFunds
		}
		next := prev.Add(signed)
		if next.IsNegative() {
			return models.ErrInsufficientFunds
		}

		now := s.now().UTC()
		entry := models.Transaction{
			UserID:       p.UserID,
			Type:         p.Kind,
			Amount:       signed,
			Description:  p.Description,
			Location:     p.Location,
			Timestamp:    now,
			BalanceAfter: next,
		}
		if err := tx.AppendTransaction(ctx, &entry); err != nil {
			return err
		}
		if err := tx.PutBalance(ctx, models.Balance{UserID: p.UserID, Balance: next, LastUpdated: now}); err != nil {
			return err
		}

		change = &models.BalanceChange{
			UserID:          p.UserID,
			PreviousBalance: prev,
			NewBalance:      next,
			AmountChanged:   signed,
			Transaction:     entry,
		}
		return nil
	})
	if err != nil {
		s.reject(p, err)
		return nil, err
	}

	ledgerMutations.WithLabelValues(string(p.Kind), "accepted").Inc()
	s.audit.LogBalanceChange(change.Transaction.ID, p.UserID, string(p.Kind), signed, change.NewBalance)
	return change, nil
}

// Check returns the error Post would give for p against the current balance
// without applying it. A concurrent mutation can still change the outcome.
func (s *LedgerService) Check(ctx context.Context, p Posting) error {
	signed, err := signedAmount(p.Amount, p.Kind)
	if err != nil {
		return err
	}
	b, err := s.GetBalance(ctx, p.UserID)
	if err != nil {
		return err
	}
	if b.Balance.Add(signed).IsNegative() {
		return models.ErrInsufficientFunds
	}
	return nil
}

func (s *LedgerService) reject(p Posting, err error) {
	ledgerMutations.WithLabelValues(string(p.Kind), "rejected").Inc()
	s.audit.LogError(string(p.Kind), p.UserID, err)
}

// signedAmount rejects zero and sub-cent amounts and applies the sign implied
// by kind. Purchases accept either sign; a negative recharge is rejected
// rather than turned into a credit.
func signedAmount(amount decimal.Decimal, kind models.TransactionType) (decimal.Decimal, error) {
	if !kind.Valid() {
		return decimal.Decimal{}, models.ErrInvalidType
	}
	if amount.IsZero() || !amount.Equal(amount.Round(2)) {
		return decimal.Decimal{}, models.ErrInvalidAmount
	}
	if kind == models.TransactionRecharge && amount.IsNegative() {
		return decimal.Decimal{}, models.ErrInvalidAmount
	}
	if kind == models.TransactionPurchase {
		return amount.Abs().Neg(), nil
	}
	return amount.Abs(), nil
}

// SeedDemoData loads the demo balances and history into an empty ledger.
func (s *LedgerService) SeedDemoData(ctx context.Context) error {
	n, err := s.store.CountTransactions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seeded := s.now().UTC()
	balances := []models.Balance{
		{UserID: "student1", Balance: decimal.RequireFromString("45.75"), LastUpdated: seeded},
		{UserID: "student2", Balance: decimal.RequireFromString("125.50"), LastUpdated: seeded},
		{UserID: "student3", Balance: decimal.RequireFromString("89.25"), LastUpdated: seeded},
	}
	history := []models.Transaction{
		{
			UserID:       "student1",
			Type:         models.TransactionPurchase,
			Amount:       decimal.RequireFromString("-8.50"),
			Description:  "Lunch Combo",
			Location:     "Main Cafeteria",
			Timestamp:    time.Date(2024, 1, 16, 12, 30, 0, 0, time.UTC),
			BalanceAfter: decimal.RequireFromString("45.75"),
		},
		{
			UserID:       "student1",
			Type:         models.TransactionRecharge,
			Amount:       decimal.RequireFromString("25.00"),
			Description:  descCardRecharge,
			Location:     "Online Payment",
			Timestamp:    time.Date(2024, 1, 15, 18, 45, 0, 0, time.UTC),
			BalanceAfter: decimal.RequireFromString("58.50"),
		},
	}

	err = s.store.WithinTx(ctx, func(tx store.LedgerTx) error {
		for _, b := range balances {
			if _, ok, err := tx.Balance(ctx, b.UserID); err != nil {
				return err
			} else if ok {
				continue
			}
			if err := tx.PutBalance(ctx, b); err != nil {
				return err
			}
		}
		for i := range history {
			if err := tx.AppendTransaction(ctx, &history[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}

	s.logger.Info("ledger seeded with demo data", zap.Int("balances", len(balances)), zap.Int("transactions", len(history)))
	return nil
}
