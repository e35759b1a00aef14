package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/campusmeal/backend/internal/models"
)

// MemoryLedger is the default process-lifetime ledger. A single mutex
// serialises writers; WithinTx stages changes and applies them only on success.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]models.Balance
	txs      []models.Transaction
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]models.Balance)}
}

func (m *MemoryLedger) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{parent: m, balances: make(map[string]models.Balance)}
	if err := fn(tx); err != nil {
		return err
	}

	for id, b := range tx.balances {
		m.balances[id] = b
	}
	m.txs = append(m.txs, tx.appended...)
	return nil
}

func (m *MemoryLedger) Balance(_ context.Context, userID string) (models.Balance, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.balances[userID]
	return b, ok, nil
}

func (m *MemoryLedger) Transactions(_ context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	m.mu.RLock()
	out := make([]models.Transaction, 0, len(m.txs))
	for _, t := range m.txs {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()

	sortNewestFirst(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryLedger) CountTransactions(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs), nil
}

type memoryTx struct {
	parent   *MemoryLedger
	balances map[string]models.Balance
	appended []models.Transaction
}

func (t *memoryTx) Balance(_ context.Context, userID string) (models.Balance, bool, error) {
	if b, ok := t.balances[userID]; ok {
		return b, true, nil
	}
	b, ok := t.parent.balances[userID]
	return b, ok, nil
}

func (t *memoryTx) PutBalance(_ context.Context, b models.Balance) error {
	t.balances[b.UserID] = b
	return nil
}

func (t *memoryTx) AppendTransaction(_ context.Context, tx *models.Transaction) error {
	tx.ID = strconv.Itoa(len(t.parent.txs) + len(t.appended) + 1)
	t.appended = append(t.appended, *tx)
	return nil
}

// sortNewestFirst orders by timestamp descending, ties by id descending.
func sortNewestFirst(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.After(txs[j].Timestamp)
		}
		a, _ := strconv.Atoi(txs[i].ID)
		b, _ := strconv.Atoi(txs[j].ID)
		return a > b
	})
}

// MemoryUsers is the in-memory directory.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[int]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[int]models.User)}
}

func (m *MemoryUsers) List(context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryUsers) Get(_ context.Context, id int) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := copyUser(u)
	return &cp, nil
}

func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MemoryUsers) GetByCardNumber(_ context.Context, cardNumber string) (*models.User, error) {
	if cardNumber == "" {
		return nil, models.ErrUserNotFound
	}
	return m.find(func(u models.User) bool { return u.CardNumber == cardNumber })
}

func (m *MemoryUsers) GetByAccountID(_ context.Context, accountID string) (*models.User, error) {
	if accountID == "" {
		return nil, models.ErrUserNotFound
	}
	return m.find(func(u models.User) bool { return u.AccountID == accountID })
}

func (m *MemoryUsers) find(match func(models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			cp := copyUser(u)
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *MemoryUsers) Create(_ context.Context, build func(id int) *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := 1
	for id := range m.users {
		if id >= next {
			next = id + 1
		}
	}
	u := build(next)
	u.ID = next
	if m.emailTakenLocked(u.Email, u.ID) {
		return nil, models.ErrEmailTaken
	}
	m.users[next] = copyUser(*u)
	return u, nil
}

func (m *MemoryUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return models.ErrUserNotFound
	}
	if m.emailTakenLocked(u.Email, u.ID) {
		return models.ErrEmailTaken
	}
	m.users[u.ID] = copyUser(*u)
	return nil
}

// emailTakenLocked reports whether another account already uses email.
// Callers hold m.mu.
func (m *MemoryUsers) emailTakenLocked(email string, ownerID int) bool {
	for id, u := range m.users {
		if id != ownerID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (m *MemoryUsers) Delete(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	delete(m.users, id)
	return &u, nil
}

func (m *MemoryUsers) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// copyUser detaches the balance pointer from the stored record.
func copyUser(u models.User) models.User {
	if u.Balance != nil {
		b := *u.Balance
		u.Balance = &b
	}
	return u
}
