package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/audit"
	"github.com/campusmeal/backend/internal/config"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

// QRService issues one-time payment tokens a student shows at the till.
// Tokens live in redis under qr:<token> and are claimed by deleting them.
type QRService struct {
	redis     *redis.Client
	ledger    *LedgerService
	users     store.UserStore
	ttl       time.Duration
	imageSize int
	maxPerWin int
	window    time.Duration
	audit     *audit.Logger
	logger    *zap.Logger
	newToken  func() string
}

func NewQRService(redisClient *redis.Client, ledger *LedgerService, users store.UserStore, cfg config.QRConfig, logger *zap.Logger) *QRService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ImageSize <= 0 {
		cfg.ImageSize = 256
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Hour
	}
	return &QRService{
		redis:     redisClient,
		ledger:    ledger,
		users:     users,
		ttl:       cfg.TokenTTL,
		imageSize: cfg.ImageSize,
		maxPerWin: cfg.MaxPerWindow,
		window:    cfg.RateWindow,
		audit:     audit.NewLogger(logger),
		logger:    logger.Named("qr"),
		newToken:  uuid.NewString,
	}
}

func (s *QRService) GenerateQRCode(ctx context.Context, accountID string) (*models.QRPaymentToken, error) {
	if err := s.ensureHolderActive(ctx, accountID); err != nil {
		return nil, err
	}
	if err := s.checkRateLimit(ctx, accountID); err != nil {
		return nil, err
	}

	token := s.newToken()
	if err := s.redis.Set(ctx, qrKey(token), accountID, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store qr token: %w", err)
	}
	s.incrementRateLimit(ctx, accountID)

	png, err := qrcode.Encode(token, qrcode.Medium, s.imageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	return &models.QRPaymentToken{
		Token:     token,
		AccountID: accountID,
		QRImage:   base64.StdEncoding.EncodeToString(png),
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}

// Redeem claims the token and charges the purchase to its account. A token
// can be redeemed once. Charges that would be refused leave the token usable.
func (s *QRService) Redeem(ctx context.Context, token string, amount decimal.Decimal, description, location string, cashierID int) (*models.BalanceChange, error) {
	key := qrKey(token)

	accountID, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, models.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("read qr token: %w", err)
	}

	if err := s.ensureHolderActive(ctx, accountID); err != nil {
		return nil, err
	}
	posting := Posting{
		UserID:      accountID,
		Kind:        models.TransactionPurchase,
		Amount:      amount,
		Description: description,
		Location:    location,
	}
	if err := s.ledger.Check(ctx, posting); err != nil {
		return nil, err
	}

	// Del reports 0 when a concurrent redeem won the race.
	n, err := s.redis.Del(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("claim qr token: %w", err)
	}
	if n == 0 {
		return nil, models.ErrInvalidToken
	}

	change, err := s.ledger.Post(ctx, posting)
	if err != nil {
		s.restore(ctx, key, accountID)
		return nil, err
	}

	s.audit.LogOperation(audit.EventQRRedeemed, cashierID, accountID)
	return change, nil
}

// ensureHolderActive refuses accounts whose directory record is inactive.
// Ledger accounts without a directory record are not blocked.
func (s *QRService) ensureHolderActive(ctx context.Context, accountID string) error {
	holder, err := s.users.GetByAccountID(ctx, accountID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up card holder: %w", err)
	}
	if holder.Status != models.StatusActive {
		s.logger.Info("qr refused for inactive card", zap.String("account_id", accountID))
		return models.ErrAccountInactive
	}
	return nil
}

// restore puts back a claimed token whose charge was refused.
func (s *QRService) restore(ctx context.Context, key, accountID string) {
	if err := s.redis.Set(ctx, key, accountID, s.ttl).Err(); err != nil {
		s.logger.Warn("qr token not restored", zap.String("account_id", accountID), zap.Error(err))
	}
}

func (s *QRService) checkRateLimit(ctx context.Context, accountID string) error {
	if s.maxPerWin <= 0 {
		return nil
	}
	count, err := s.redis.Get(ctx, rateLimitKey(accountID)).Int()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read qr rate limit: %w", err)
	}
	if count >= s.maxPerWin {
		s.logger.Info("qr generation rate limited", zap.String("account_id", accountID))
		return models.ErrRateLimited
	}
	return nil
}

func (s *QRService) incrementRateLimit(ctx context.Context, accountID string) {
	if s.maxPerWin <= 0 {
		return
	}
	key := rateLimitKey(accountID)
	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("qr rate limit not recorded", zap.String("account_id", accountID), zap.Error(err))
	}
}

func rateLimitKey(accountID string) string {
	return fmt.Sprintf("qr:ratelimit:%s", accountID)
}

func qrKey(token string) string {
	return fmt.Sprintf("qr:%s", token)
}
