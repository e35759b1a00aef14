package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/campusmeal/backend/internal/models"
)

const userColumns = "id, name, email, role, status, balance, card_number, account_id, password_hash, created_at"

// SQLUsers is the directory backed by the users table.
type SQLUsers struct {
	db *sql.DB
	d  dialect
}

func NewSQLUsers(db *sql.DB, driver string) (*SQLUsers, error) {
	d, err := newDialect(driver)
	if err != nil {
		return nil, err
	}
	return &SQLUsers{db: db, d: d}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u          models.User
		balance    decimal.NullDecimal
		cardNumber sql.NullString
		accountID  sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &balance,
		&cardNumber, &accountID, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if balance.Valid {
		b := balance.Decimal
		u.Balance = &b
	}
	u.CardNumber = cardNumber.String
	u.AccountID = accountID.String
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (s *SQLUsers) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *SQLUsers) getBy(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, s.d.rebind("SELECT "+userColumns+" FROM users WHERE "+where), arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *SQLUsers) Get(ctx context.Context, id int) (*models.User, error) {
	return s.getBy(ctx, "id = ?", id)
}

func (s *SQLUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getBy(ctx, "LOWER(email) = LOWER(?)", email)
}

func (s *SQLUsers) GetByCardNumber(ctx context.Context, cardNumber string) (*models.User, error) {
	if cardNumber == "" {
		return nil, models.ErrUserNotFound
	}
	return s.getBy(ctx, "card_number = ?", cardNumber)
}

func (s *SQLUsers) GetByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	if accountID == "" {
		return nil, models.ErrUserNotFound
	}
	return s.getBy(ctx, "account_id = ?", accountID)
}

func (s *SQLUsers) Create(ctx context.Context, build func(id int) *models.User) (*models.User, error) {
	var created *models.User
	err := withTx(ctx, s.db, s.d, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM users").Scan(&next); err != nil {
			return fmt.Errorf("next user id: %w", err)
		}

		u := build(next)
		u.ID = next
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, s.d.rebind(`
			INSERT INTO users (`+userColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			u.ID, u.Name, u.Email, string(u.Role), string(u.Status), nullableDecimal(u.Balance),
			nullableString(u.CardNumber), nullableString(u.AccountID), u.PasswordHash, u.CreatedAt.UTC(),
		)
		if isEmailConflict(err) {
			return models.ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLUsers) Update(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx, s.d.rebind(`
		UPDATE users
		SET name = ?, email = ?, role = ?, status = ?, balance = ?, card_number = ?, account_id = ?, password_hash = ?
		WHERE id = ?`),
		u.Name, u.Email, string(u.Role), string(u.Status), nullableDecimal(u.Balance),
		nullableString(u.CardNumber), nullableString(u.AccountID), u.PasswordHash, u.ID,
	)
	if isEmailConflict(err) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	if n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *SQLUsers) Delete(ctx context.Context, id int) (*models.User, error) {
	var deleted *models.User
	err := withTx(ctx, s.db, s.d, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			s.d.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"+s.d.forUpdate()), id))
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, s.d.rebind("DELETE FROM users WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		deleted = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *SQLUsers) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// isEmailConflict matches a violation of the users.email unique constraint,
// as reported by lib/pq (users_email_key) or modernc sqlite (users.email).
func isEmailConflict(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, "email")
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.StringFixed(2)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
