package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campusmeal/backend/internal/models"
)

// SQLLedger stores balances and the transaction log in postgres or sqlite.
type SQLLedger struct {
	db *sql.DB
	d  dialect
}

func NewSQLLedger(db *sql.DB, driver string) (*SQLLedger, error) {
	d, err := newDialect(driver)
	if err != nil {
		return nil, err
	}
	return &SQLLedger{db: db, d: d}, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLLedger) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	return withTx(ctx, s.db, s.d, func(tx *sql.Tx) error {
		return fn(&sqlLedgerTx{tx: tx, d: s.d})
	})
}

func (s *SQLLedger) Balance(ctx context.Context, userID string) (models.Balance, bool, error) {
	return readBalance(ctx, s.db, s.d, userID, "")
}

func readBalance(ctx context.Context, q queryer, d dialect, userID, suffix string) (models.Balance, bool, error) {
	b := models.Balance{UserID: userID}
	err := q.QueryRowContext(ctx,
		d.rebind("SELECT balance, last_updated FROM balances WHERE user_id = ?"+suffix),
		userID,
	).Scan(&b.Balance, &b.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Balance{UserID: userID}, false, nil
	}
	if err != nil {
		return models.Balance{}, false, fmt.Errorf("read balance %s: %w", userID, err)
	}
	return b, true, nil
}

func (s *SQLLedger) Transactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Type != "" && filter.Type != models.TransactionTypeAll {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}

	query := "SELECT id, user_id, type, amount, description, location, occurred_at, balance_after FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []models.Transaction{}
	for rows.Next() {
		var (
			t  models.Transaction
			id int64
		)
		if err := rows.Scan(&id, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.Location, &t.Timestamp, &t.BalanceAfter); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.ID = strconv.FormatInt(id, 10)
		t.Timestamp = t.Timestamp.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLLedger) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

type sqlLedgerTx struct {
	tx *sql.Tx
	d  dialect
}

func (t *sqlLedgerTx) Balance(ctx context.Context, userID string) (models.Balance, bool, error) {
	return readBalance(ctx, t.tx, t.d, userID, t.d.forUpdate())
}

func (t *sqlLedgerTx) PutBalance(ctx context.Context, b models.Balance) error {
	_, err := t.tx.ExecContext(ctx, t.d.rebind(`
		INSERT INTO balances (user_id, balance, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET balance = excluded.balance, last_updated = excluded.last_updated`),
		b.UserID, b.Balance.StringFixed(2), b.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("write balance %s: %w", b.UserID, err)
	}
	return nil
}

func (t *sqlLedgerTx) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	var n int64
	if err := t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	id := n + 1

	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	_, err := t.tx.ExecContext(ctx, t.d.rebind(`
		INSERT INTO transactions (id, user_id, type, amount, description, location, occurred_at, balance_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		id, tx.UserID, string(tx.Type), tx.Amount.StringFixed(2), tx.Description, tx.Location,
		tx.Timestamp.UTC(), tx.BalanceAfter.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	tx.ID = strconv.FormatInt(id, 10)
	return nil
}
