package audit

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventBalanceChange = "BALANCE_CHANGE"
	EventUserCreated   = "USER_CREATED"
	EventUserUpdated   = "USER_UPDATED"
	EventUserDeleted   = "USER_DELETED"
	EventLogin         = "LOGIN"
	EventQRRedeemed    = "QR_REDEEMED"
	EventError         = "ERROR"
)

// Logger writes one structured audit record per money or directory event.
// All records carry audit=true so they can be split from the request log.
type Logger struct {
	log *zap.Logger
}

func NewLogger(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{log: base.Named("audit").With(zap.Bool("audit", true))}
}

func (a *Logger) LogBalanceChange(transactionID, accountID, kind string, amount, balanceAfter decimal.Decimal) {
	a.log.Info(EventBalanceChange,
		zap.String("transaction_id", transactionID),
		zap.String("account_id", accountID),
		zap.String("kind", kind),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance_after", balanceAfter.StringFixed(2)),
		zap.String("status", "SUCCESS"),
	)
}

func (a *Logger) LogError(operation, accountID string, err error) {
	a.log.Warn(EventError,
		zap.String("operation", operation),
		zap.String("account_id", accountID),
		zap.String("status", "FAILED"),
		zap.Error(err),
	)
}

func (a *Logger) LogOperation(event string, actorID int, subject string) {
	a.log.Info(event,
		zap.Int("actor_id", actorID),
		zap.String("subject", subject),
		zap.String("status", "SUCCESS"),
	)
}
