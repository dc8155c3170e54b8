package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.ProgressStore = (*ProgressStore)(nil)

// ProgressStore is an in-memory repository.ProgressStore. Update holds a
// single lock for the whole read-modify-write, like a row lock would.
type ProgressStore struct {
	mu      sync.Mutex
	records map[string]*domain.ProgressRecord

	UpdateFn func(ctx context.Context, userID string, fn func(rec *domain.ProgressRecord) (bool, error)) error

	Writes int
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{records: make(map[string]*domain.ProgressRecord)}
}

func (m *ProgressStore) Get(_ context.Context, userID string) (*domain.ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return domain.NewProgressRecord(userID), nil
	}
	return clone(rec), nil
}

func (m *ProgressStore) Update(ctx context.Context, userID string, fn func(rec *domain.ProgressRecord) (bool, error)) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, userID, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[userID]
	if !ok {
		rec = domain.NewProgressRecord(userID)
	} else {
		rec = clone(rec)
	}
	changed, err := fn(rec)
	if err != nil || !changed {
		return err
	}
	m.records[userID] = rec
	m.Writes++
	return nil
}

// clone deep-copies a record so callers never share maps with the store.
func clone(rec *domain.ProgressRecord) *domain.ProgressRecord {
	data, _ := json.Marshal(rec)
	out := domain.NewProgressRecord(rec.UserID)
	_ = json.Unmarshal(data, out)
	return out
}
