package services

import (
	"context"
	"errors"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

// CardService resolves a scanned card to its holder and live balance.
type CardService struct {
	users  store.UserStore
	ledger *LedgerService
}

func NewCardService(users store.UserStore, ledger *LedgerService) *CardService {
	return &CardService{users: users, ledger: ledger}
}

// LookupCard returns the student holding cardNumber. The balance comes from
// the ledger, keyed by the holder's account id.
func (cs *CardService) LookupCard(ctx context.Context, cardNumber string) (*models.CardDetails, error) {
	holder, err := cs.users.GetByCardNumber(ctx, cardNumber)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}

	accountID := holder.AccountID
	if accountID == "" {
		accountID = holder.CardNumber
	}
	balance, err := cs.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &models.CardDetails{
		CardNumber: holder.CardNumber,
		Holder:     *holder,
		AccountID:  accountID,
		Balance:    balance.Balance,
		Active:     holder.Status == models.StatusActive,
	}, nil
}
