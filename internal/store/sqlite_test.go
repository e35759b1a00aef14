package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/config"
	"github.com/campusmeal/backend/internal/database"
	"github.com/campusmeal/backend/internal/models"
)

type SQLiteStoreSuite struct {
	suite.Suite
	ctx    context.Context
	db     *sql.DB
	ledger *SQLLedger
	users  *SQLUsers
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := database.InitSQLite(s.ctx, ":memory:", zap.NewNop())
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.ctx, db, config.DriverSQLite))
	s.db = db

	s.ledger, err = NewSQLLedger(db, config.DriverSQLite)
	s.Require().NoError(err)
	s.users, err = NewSQLUsers(db, config.DriverSQLite)
	s.Require().NoError(err)
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.db.Close()
}

func (s *SQLiteStoreSuite) purchase(userID, amount string, at time.Time) {
	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(tx LedgerTx) error {
		b, _, err := tx.Balance(s.ctx, userID)
		if err != nil {
			return err
		}
		after := b.Balance.Add(dec(amount))
		t := &models.Transaction{UserID: userID, Type: models.TransactionPurchase, Amount: dec(amount),
			Description: "Lunch", Location: models.DefaultLocation, Timestamp: at, BalanceAfter: after}
		if err := tx.AppendTransaction(s.ctx, t); err != nil {
			return err
		}
		return tx.PutBalance(s.ctx, models.Balance{UserID: userID, Balance: after, LastUpdated: at})
	}))
}

func (s *SQLiteStoreSuite) TestBalanceRoundTrip() {
	_, ok, err := s.ledger.Balance(s.ctx, "student1")
	s.Require().NoError(err)
	s.False(ok)

	now := time.Now().UTC().Truncate(time.Second)
	s.Require().NoError(s.ledger.WithinTx(s.ctx, func(tx LedgerTx) error {
		return tx.PutBalance(s.ctx, models.Balance{UserID: "student1", Balance: dec("45.75"), LastUpdated: now})
	}))
	s.purchase("student1", "-8.50", now.Add(time.Minute))

	b, ok, err := s.ledger.Balance(s.ctx, "student1")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("37.25", b.Balance.StringFixed(2))
}

func (s *SQLiteStoreSuite) TestRollbackLeavesNothing() {
	err := s.ledger.WithinTx(s.ctx, func(tx LedgerTx) error {
		_ = tx.PutBalance(s.ctx, models.Balance{UserID: "student1", Balance: dec("1"), LastUpdated: time.Now()})
		_ = tx.AppendTransaction(s.ctx, &models.Transaction{UserID: "student1", Type: models.TransactionRecharge,
			Amount: dec("1"), Description: "x", Location: "y", BalanceAfter: dec("1")})
		return models.ErrInsufficientFunds
	})
	s.ErrorIs(err, models.ErrInsufficientFunds)

	_, ok, _ := s.ledger.Balance(s.ctx, "student1")
	s.False(ok)
	n, err := s.ledger.CountTransactions(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *SQLiteStoreSuite) TestTransactionsNewestFirst() {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	s.purchase("student1", "-1", base)
	s.purchase("student2", "-2", base.Add(time.Hour))
	s.purchase("student1", "-3", base.Add(2*time.Hour))

	txs, err := s.ledger.Transactions(s.ctx, models.TransactionFilter{UserID: "student1"})
	s.Require().NoError(err)
	s.Require().Len(txs, 2)
	s.Equal("3", txs[0].ID)
	s.Equal("1", txs[1].ID)

	txs, err = s.ledger.Transactions(s.ctx, models.TransactionFilter{Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal("3", txs[0].ID)
}

func (s *SQLiteStoreSuite) TestUsersCRUD() {
	n, err := s.users.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	zero := dec("0")
	u, err := s.users.Create(s.ctx, func(id int) *models.User {
		card := models.CardNumberFor(id)
		return &models.User{Name: "John Doe", Email: "student@university.edu", Role: models.RoleStudent,
			Status: models.StatusActive, Balance: &zero, CardNumber: card, AccountID: card, PasswordHash: "h"}
	})
	s.Require().NoError(err)
	s.Equal(1, u.ID)

	staff, err := s.users.Create(s.ctx, func(int) *models.User {
		return &models.User{Name: "Cashier", Email: "cashier@university.edu", Role: models.RoleCashier, Status: models.StatusActive}
	})
	s.Require().NoError(err)
	s.Equal(2, staff.ID)

	got, err := s.users.GetByEmail(s.ctx, "STUDENT@university.edu")
	s.Require().NoError(err)
	s.Equal("1234560001", got.CardNumber)
	s.Require().NotNil(got.Balance)

	got, err = s.users.GetByCardNumber(s.ctx, "1234560001")
	s.Require().NoError(err)
	s.Equal(1, got.ID)

	got, err = s.users.GetByAccountID(s.ctx, "1234560001")
	s.Require().NoError(err)
	s.Equal(1, got.ID)

	_, err = s.users.GetByAccountID(s.ctx, "student9")
	s.ErrorIs(err, models.ErrUserNotFound)

	fetched, err := s.users.Get(s.ctx, 2)
	s.Require().NoError(err)
	s.Nil(fetched.Balance)
	s.Empty(fetched.CardNumber)

	fetched.Status = models.StatusInactive
	s.Require().NoError(s.users.Update(s.ctx, fetched))
	fetched, _ = s.users.Get(s.ctx, 2)
	s.Equal(models.StatusInactive, fetched.Status)

	deleted, err := s.users.Delete(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal("Cashier", deleted.Name)

	_, err = s.users.Delete(s.ctx, 2)
	s.ErrorIs(err, models.ErrUserNotFound)

	list, err := s.users.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *SQLiteStoreSuite) TestUsers_EmailConflict() {
	mk := func(email string) func(int) *models.User {
		return func(int) *models.User {
			return &models.User{Name: "Staff", Email: email, Role: models.RoleCashier, Status: models.StatusActive}
		}
	}
	_, err := s.users.Create(s.ctx, mk("cashier@university.edu"))
	s.Require().NoError(err)
	other, err := s.users.Create(s.ctx, mk("manager@university.edu"))
	s.Require().NoError(err)

	_, err = s.users.Create(s.ctx, mk("cashier@university.edu"))
	s.ErrorIs(err, models.ErrEmailTaken)

	other.Email = "cashier@university.edu"
	s.ErrorIs(s.users.Update(s.ctx, other), models.ErrEmailTaken)

	n, err := s.users.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}
