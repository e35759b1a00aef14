package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/services"
)

type contextKey int

const principalKey contextKey = iota

// Principal is the authenticated caller.
type Principal struct {
	UserID    int
	Role      models.Role
	AccountID string
}

// CanActOn reports whether the caller may touch the ledger account. Students
// are limited to their own account; staff are not.
func (p Principal) CanActOn(accountID string) bool {
	return p.Role != models.RoleStudent || (p.AccountID != "" && p.AccountID == accountID)
}

type TokenParser interface {
	ParseToken(ctx context.Context, raw string) (*services.Claims, error)
}

// Authenticator enforces bearer tokens and roles. When disabled every request
// passes and no Principal is attached.
type Authenticator struct {
	parser  TokenParser
	enabled bool
	logger  *zap.Logger
}

func NewAuthenticator(parser TokenParser, enabled bool, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{parser: parser, enabled: enabled, logger: logger.Named("auth")}
}

func (a *Authenticator) Enabled() bool { return a.enabled }

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	if !a.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
			return
		}

		claims, err := a.parser.ParseToken(r.Context(), token)
		if err != nil {
			a.logger.Debug("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
			services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
			return
		}

		p := Principal{UserID: claims.UserID, Role: claims.Role, AccountID: claims.AccountID}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireRole lets through callers holding one of roles.
func (a *Authenticator) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !a.enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
				return
			}
			if !slices.Contains(roles, p.Role) {
				services.SendErrorResponse(w, "Forbidden", http.StatusForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
