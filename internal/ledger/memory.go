package ledger

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps the ledger in memory. Used by tests and previews.
type MemoryStore struct {
	mu       sync.Mutex
	expenses []Expense
	nextID   int64
}

// NewMemoryStore returns a store pre-populated with seed.
func NewMemoryStore(seed ...Expense) *MemoryStore {
	s := &MemoryStore{nextID: 1}
	for _, e := range seed {
		e.ID = s.nextID
		s.nextID++
		s.expenses = append(s.expenses, e)
	}
	return s
}

func (s *MemoryStore) Begin(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memorySession{store: s}, nil
}

func (s *MemoryStore) Close() error { return nil }

// List returns a copy of the committed expenses.
func (s *MemoryStore) List(ctx context.Context) ([]Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Expense, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

type memorySession struct {
	store   *MemoryStore
	pending []Expense
	done    bool
}

func (m *memorySession) InsertExpense(ctx context.Context, e Expense) (int64, error) {
	if m.done {
		return 0, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.store.mu.Lock()
	e.ID = m.store.nextID
	m.store.nextID++
	m.store.mu.Unlock()

	m.pending = append(m.pending, e)
	return e.ID, nil
}

func (m *memorySession) HasDuplicate(ctx context.Context, q DuplicateQuery) (bool, error) {
	if m.done {
		return false, ErrSessionClosed
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for _, e := range m.store.expenses {
		if q.matches(e) {
			return true, nil
		}
	}
	for _, e := range m.pending {
		if q.matches(e) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memorySession) Commit() error {
	if m.done {
		return ErrSessionClosed
	}
	m.done = true
	m.store.mu.Lock()
	m.store.expenses = append(m.store.expenses, m.pending...)
	m.store.mu.Unlock()
	m.pending = nil
	return nil
}

func (m *memorySession) Rollback() error {
	m.done = true
	m.pending = nil
	return nil
}

func (q DuplicateQuery) matches(e Expense) bool {
	return e.Date == q.Date &&
		e.Category == q.Category &&
		e.Amount.Equal(q.Amount) &&
		strings.Contains(e.Description, q.DescriptionSubstring)
}
