package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/campusmeal/backend/internal/config"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/services"
	"github.com/campusmeal/backend/internal/store"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Login email")
	role := fs.String("role", string(models.RoleStudent), "admin, manager, cashier or student")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", cfg.Storage.Driver, "Storage driver: sqlite or postgres")
	dbPath := fs.String("db", cfg.Storage.SQLitePath, "SQLite database file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-role <role>] [-password <password>] [-driver sqlite|postgres] [-db <path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}
	if *driver != config.DriverSQLite && *driver != config.DriverPostgres {
		return fmt.Errorf("adduser needs a persistent store, got driver %q", *driver)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		if password, err = readPassword(stdin); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	req := models.CreateUserRequest{Name: *name, Email: *email, Role: models.Role(*role), Password: password}
	if err := services.NewValidationHelper().ValidateStruct(&req); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	storage := config.StorageConfig{Driver: *driver, SQLitePath: *dbPath}
	backend, err := store.Open(ctx, storage, cfg.Database, zap.NewNop())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	users := services.NewUserService(backend.Users, services.NewPasswordHasher(cfg.Auth.Argon2), nil)
	user, err := users.Create(ctx, req, 0)
	if errors.Is(err, models.ErrEmailTaken) {
		return fmt.Errorf("user %s already exists", req.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	if user.CardNumber != "" {
		fmt.Fprintf(stdout, "Card number: %s\n", user.CardNumber)
	}
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
