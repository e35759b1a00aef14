package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/campusmeal/backend/internal/audit"
	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

// UserService is the campus account directory. It is not cross-checked
// against the ledger.
type UserService struct {
	users  store.UserStore
	hasher *PasswordHasher
	audit  *audit.Logger
	logger *zap.Logger
	now    func() time.Time
}

func NewUserService(users store.UserStore, hasher *PasswordHasher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		audit:  audit.NewLogger(logger),
		logger: logger.Named("directory"),
		now:    time.Now,
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.users.Get(ctx, id)
}

// Create adds an account with the next free id. Students get a zero balance
// and a card number derived from the id; staff get neither.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest, actorID int) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	var hash string
	if req.Password != "" {
		var err error
		if hash, err = s.hasher.Hash(req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	created := s.now().UTC()
	user, err := s.users.Create(ctx, func(id int) *models.User {
		u := &models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			Role:         req.Role,
			Status:       models.StatusActive,
			PasswordHash: hash,
			CreatedAt:    created,
		}
		if req.Role == models.RoleStudent {
			zero := decimal.Zero
			u.Balance = &zero
			u.CardNumber = models.CardNumberFor(id)
			u.AccountID = u.CardNumber
		}
		return u
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogOperation(audit.EventUserCreated, actorID, strconv.Itoa(user.ID))
	return user, nil
}

// Update merges the supplied fields onto the stored account.
func (s *UserService) Update(ctx context.Context, req models.UpdateUserRequest, actorID int) (*models.User, error) {
	user, err := s.users.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
			return nil, err
		}
		req.Email = &email
	}

	req.Apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.LogOperation(audit.EventUserUpdated, actorID, strconv.Itoa(user.ID))
	return user, nil
}

// Delete removes and returns the account.
func (s *UserService) Delete(ctx context.Context, id int, actorID int) (*models.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.LogOperation(audit.EventUserDeleted, actorID, strconv.Itoa(id))
	return user, nil
}

// SetPassword replaces the stored hash. Used by the adduser tool.
func (s *UserService) SetPassword(ctx context.Context, id int, password string) error {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

type seedUser struct {
	user     models.User
	password string
}

func defaultUsers() []seedUser {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	balance := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	return []seedUser{
		{models.User{Name: "System Administrator", Email: "admin@university.edu", Role: models.RoleAdmin, CreatedAt: day(1, 1)}, "admin123"},
		{models.User{Name: "Food Service Manager", Email: "manager@university.edu", Role: models.RoleManager, CreatedAt: day(1, 1)}, "manager123"},
		{models.User{Name: "Cafeteria Cashier", Email: "cashier@university.edu", Role: models.RoleCashier, CreatedAt: day(1, 1)}, "cashier123"},
		{models.User{Name: "John Doe", Email: "student@university.edu", Role: models.RoleStudent, Balance: balance("125.50"),
			CardNumber: "1234567890", AccountID: "student1", CreatedAt: day(1, 15)}, "student123"},
		{models.User{Name: "Jane Smith", Email: "jane@university.edu", Role: models.RoleStudent, Balance: balance("89.25"),
			CardNumber: "1234567891", AccountID: "student2", CreatedAt: day(1, 14)}, "student123"},
	}
}

// SeedDefaults fills an empty directory with the demo campus accounts.
func (s *UserService) SeedDefaults(ctx context.Context) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for _, seed := range defaultUsers() {
		hash, err := s.hasher.Hash(seed.password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u := seed.user
		u.Status = models.StatusActive
		u.PasswordHash = hash
		if _, err := s.users.Create(ctx, func(int) *models.User { return &u }); err != nil {
			return fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}

	s.logger.Info("directory seeded with default accounts", zap.Int("count", len(defaultUsers())))
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, ownerID int) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownerID {
		return models.ErrEmailTaken
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
