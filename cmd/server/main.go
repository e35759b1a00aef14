package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/campusmeal/backend/docs"
	"github.com/campusmeal/backend/internal/config"
	"github.com/campusmeal/backend/internal/database"
	"github.com/campusmeal/backend/internal/handlers"
	mW "github.com/campusmeal/backend/internal/middleware"
	"github.com/campusmeal/backend/internal/services"
	"github.com/campusmeal/backend/internal/store"
)

// @title Campus Meal Card API
// @version 1.0
// @description Balances, transaction log and user directory for campus meal cards
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	return zcfg.Build()
}

// buildAPI opens storage and wires the services behind the router. The
// returned cleanup closes storage and Redis.
func buildAPI(ctx context.Context, cfg *config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	backend, err := store.Open(ctx, cfg.Storage, cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	logger.Info("storage ready", zap.String("driver", backend.Driver))

	redisClient := database.InitRedis(ctx, cfg.Redis, logger)
	cleanup := func() {
		if redisClient != nil {
			redisClient.Close()
		}
		backend.Close()
	}

	hasher := services.NewPasswordHasher(cfg.Auth.Argon2)
	ledger := services.NewLedgerService(backend.Ledger, logger)
	users := services.NewUserService(backend.Users, hasher, logger)
	auth := services.NewAuthService(backend.Users, hasher, cfg.Auth, redisClient, logger)

	if cfg.Ledger.SeedDemoData {
		if err := ledger.SeedDemoData(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	if cfg.Directory.SeedDefaults {
		if err := users.SeedDefaults(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	var qr *services.QRService
	if redisClient != nil {
		qr = services.NewQRService(redisClient, ledger, backend.Users, cfg.QR, logger)
	} else {
		logger.Info("qr payments disabled, redis not available")
	}
	if !cfg.Auth.Enabled {
		logger.Warn("authentication disabled, every route is open")
	}

	router := handlers.NewRouter(handlers.Deps{
		Ledger:         ledger,
		Transactions:   services.NewTransactionService(ledger, backend.Ledger, cfg.Ledger.DefaultQueryLimit, cfg.Ledger.MaxQueryLimit),
		Users:          users,
		Cards:          services.NewCardService(backend.Users, ledger),
		Auth:           auth,
		QR:             qr,
		Authenticator:  mW.NewAuthenticator(auth, cfg.Auth.Enabled, logger),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	})
	return router, cleanup, nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	router, cleanup, err := buildAPI(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
