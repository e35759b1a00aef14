package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"github.com/campusmeal/backend/internal/audit"
	"github.com/campusmeal/backend/internal/config"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

// PasswordHasher hashes with argon2id. Hashes are "salt$hash", both base64.
type PasswordHasher struct {
	params config.Argon2Config
}

func NewPasswordHasher(params config.Argon2Config) *PasswordHasher {
	return &PasswordHasher{params: params}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := h.key(password, salt)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func (h *PasswordHasher) Verify(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(hash, h.key(password, salt)) == 1
}

func (h *PasswordHasher) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLength)
}

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID    int         `json:"user_id"`
	Role      models.Role `json:"role"`
	AccountID string      `json:"account_id,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users  store.UserStore
	hasher *PasswordHasher
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	audit  *audit.Logger
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(users store.UserStore, hasher *PasswordHasher, cfg config.AuthConfig, redisClient *redis.Client, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		redis:  redisClient,
		audit:  audit.NewLogger(logger),
		logger: logger.Named("auth"),
		now:    time.Now,
	}
}

// Login checks the password and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrUserNotFound) {
		s.logger.Info("login failed, unknown email", zap.String("email", email))
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("login failed, bad password", zap.Int("user_id", user.ID))
		return nil, models.ErrInvalidCredentials
	}
	if user.Status != models.StatusActive {
		return nil, models.ErrAccountInactive
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.audit.LogOperation(audit.EventLogin, user.ID, user.Email)
	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		AccountID: user.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates signature, expiry and the logout blacklist.
func (s *AuthService) ParseToken(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	if s.redis != nil {
		n, err := s.redis.Exists(ctx, blacklistKey(raw)).Result()
		if err != nil {
			s.logger.Warn("blacklist lookup failed", zap.Error(err))
		} else if n > 0 {
			return nil, models.ErrInvalidToken
		}
	}
	return claims, nil
}

// Logout blacklists the token until it would have expired. Without redis it
// is a no-op.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if s.redis == nil || raw == "" {
		return nil
	}

	ttl := s.ttl
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil && claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, blacklistKey(raw), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// Me returns the account behind a token.
func (s *AuthService) Me(ctx context.Context, userID int) (*models.User, error) {
	return s.users.Get(ctx, userID)
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}
