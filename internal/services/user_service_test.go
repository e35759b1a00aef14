package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmeal/backend/internal/models"
	"github.com/campusmeal/backend/internal/store"
)

func TestUserService_SeedDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededDirectory(t)

	// idempotent
	require.NoError(t, svc.SeedDefaults(ctx))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 5)

	assert.Equal(t, "System Administrator", users[0].Name)
	assert.Equal(t, "John Doe", users[3].Name)
	assert.Equal(t, "1234567890", users[3].CardNumber)
	assert.Equal(t, "student1", users[3].AccountID)
	assert.Equal(t, "1234567891", users[4].CardNumber)
	for _, u := range users {
		assert.NotEmpty(t, u.PasswordHash, u.Email)
		assert.Equal(t, models.StatusActive, u.Status)
	}
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("student gets card and balance", func(t *testing.T) {
		svc, _ := newSeededDirectory(t)

		u, err := svc.Create(ctx, models.CreateUserRequest{Name: "Sam Lee", Email: "sam@university.edu", Role: models.RoleStudent}, 1)
		require.NoError(t, err)
		assert.Equal(t, 6, u.ID)
		assert.Equal(t, "1234560006", u.CardNumber)
		assert.Equal(t, u.CardNumber, u.AccountID)
		require.NotNil(t, u.Balance)
		assert.True(t, u.Balance.IsZero())
		assert.Equal(t, models.StatusActive, u.Status)
	})

	t.Run("staff get neither", func(t *testing.T) {
		svc, _ := newSeededDirectory(t)
		for _, role := range []models.Role{models.RoleAdmin, models.RoleManager, models.RoleCashier} {
			u, err := svc.Create(ctx, models.CreateUserRequest{Name: "Staff " + string(role), Email: string(role) + "2@university.edu", Role: role}, 1)
			require.NoError(t, err)
			assert.Empty(t, u.CardNumber, role)
			assert.Nil(t, u.Balance, role)
			assert.Empty(t, u.AccountID, role)
		}
	})

	t.Run("first user in an empty directory gets id 1", func(t *testing.T) {
		svc := NewUserService(store.NewMemoryUsers(), NewPasswordHasher(testArgon2), nil)
		u, err := svc.Create(ctx, models.CreateUserRequest{Name: "Only", Email: "only@university.edu", Role: models.RoleStudent}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, u.ID)
		assert.Equal(t, "1234560001", u.CardNumber)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := newSeededDirectory(t)
		_, err := svc.Create(ctx, models.CreateUserRequest{Name: "Dup", Email: "ADMIN@university.edu", Role: models.RoleAdmin}, 1)
		assert.ErrorIs(t, err, models.ErrEmailTaken)
	})

	t.Run("password is hashed", func(t *testing.T) {
		svc, users := newSeededDirectory(t)
		u, err := svc.Create(ctx, models.CreateUserRequest{Name: "Pat", Email: "pat@university.edu", Role: models.RoleCashier, Password: "secret99"}, 1)
		require.NoError(t, err)

		stored, err := users.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "secret99", stored.PasswordHash)
		assert.True(t, NewPasswordHasher(testArgon2).Verify("secret99", stored.PasswordHash))
	})
}

// slowLookupUsers widens the gap between the email check and the insert.
type slowLookupUsers struct {
	*store.MemoryUsers
}

func (s slowLookupUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.MemoryUsers.GetByEmail(ctx, email)
	time.Sleep(5 * time.Millisecond)
	return u, err
}

func TestUserService_CreateConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	users := store.NewMemoryUsers()
	svc := NewUserService(slowLookupUsers{users}, NewPasswordHasher(testArgon2), nil)

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, models.CreateUserRequest{
				Name: "Dup", Email: "dup@university.edu", Role: models.RoleCashier,
			}, 1)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errors.Is(err, models.ErrEmailTaken), err)
	}
	assert.Equal(t, 1, created)

	all, err := users.List(ctx)
	require.NoError(t, err)
	matches := 0
	for _, u := range all {
		if u.Email == "dup@university.edu" {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededDirectory(t)

	name := "Johnathan Doe"
	status := models.StatusInactive
	u, err := svc.Update(ctx, models.UpdateUserRequest{ID: 4, Name: &name, Status: &status}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Johnathan Doe", u.Name)
	assert.Equal(t, models.StatusInactive, u.Status)
	assert.Equal(t, "1234567890", u.CardNumber, "unsupplied fields are kept")

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.Update(ctx, models.UpdateUserRequest{ID: 99, Name: &name}, 1)
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("email owned by someone else", func(t *testing.T) {
		email := "jane@university.edu"
		_, err := svc.Update(ctx, models.UpdateUserRequest{ID: 4, Email: &email}, 1)
		assert.ErrorIs(t, err, models.ErrEmailTaken)
	})

	t.Run("keeping own email is fine", func(t *testing.T) {
		email := "Student@University.edu"
		u, err := svc.Update(ctx, models.UpdateUserRequest{ID: 4, Email: &email}, 1)
		require.NoError(t, err)
		assert.Equal(t, "student@university.edu", u.Email)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeededDirectory(t)

	deleted, err := svc.Delete(ctx, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", deleted.Name)

	_, err = svc.Delete(ctx, 42, 1)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	users, _ := svc.List(ctx)
	assert.Len(t, users, 4, "failed delete leaves the directory unchanged")
}

func TestUserService_SetPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newSeededDirectory(t)

	require.NoError(t, svc.SetPassword(ctx, 3, "till-2024"))
	u, _ := users.Get(ctx, 3)
	assert.True(t, NewPasswordHasher(testArgon2).Verify("till-2024", u.PasswordHash))

	assert.ErrorIs(t, svc.SetPassword(ctx, 77, "x"), models.ErrUserNotFound)
}
