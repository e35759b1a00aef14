package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	mW "github.com/campusmeal/backend/internal/middleware"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/services"
)

// Deps are the services the API is built from. QR is nil when Redis is not
// available and its routes are then left unmounted.
type Deps struct {
	Ledger         *services.LedgerService
	Transactions   *services.TransactionService
	Users          *services.UserService
	Cards          *services.CardService
	Auth           *services.AuthService
	QR             *services.QRService
	Authenticator  *mW.Authenticator
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	authn := d.Authenticator
	balance := NewBalanceHandler(d.Ledger, logger)
	transactions := NewTransactionHandler(d.Transactions, logger)
	users := NewUserHandler(d.Users, d.Cards, logger)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(mW.Metrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		var auth *AuthHandler
		if d.Auth != nil && authn.Enabled() {
			auth = NewAuthHandler(d.Auth, logger)
			r.Post("/auth/login", auth.Login)
		}

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)

			if auth != nil {
				r.Post("/auth/logout", auth.Logout)
				r.Get("/auth/me", auth.Me)
			}

			r.Get("/balance", balance.GetBalance)
			r.With(authn.RequireRole(models.RoleAdmin, models.RoleCashier)).Post("/balance", balance.UpdateBalance)

			r.Get("/transactions", transactions.ListTransactions)
			r.With(authn.RequireRole(models.RoleAdmin, models.RoleCashier, models.RoleStudent)).
				Post("/transactions", transactions.CreateTransaction)

			r.With(authn.RequireRole(models.RoleAdmin, models.RoleManager)).Get("/users", users.ListUsers)
			r.Group(func(r chi.Router) {
				r.Use(authn.RequireRole(models.RoleAdmin))
				r.Post("/users", users.CreateUser)
				r.Put("/users", users.UpdateUser)
				r.Delete("/users", users.DeleteUser)
			})

			r.With(authn.RequireRole(models.RoleAdmin, models.RoleCashier)).Get("/cards/{cardNumber}", users.GetCard)

			if d.QR != nil {
				qr := NewQRHandler(d.QR, logger)
				r.With(authn.RequireRole(models.RoleStudent)).Post("/qr/generate", qr.GenerateQR)
				r.With(authn.RequireRole(models.RoleAdmin, models.RoleCashier)).Post("/qr/redeem", qr.RedeemQR)
			}
		})
	})

	return r
}
