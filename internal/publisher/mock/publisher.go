package mock

import (
	"context"
	"sync"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/publisher"
)

// Ensure MockPublisher implements publisher.Publisher.
var _ publisher.Publisher = (*MockPublisher)(nil)

// MockPublisher records published events.
type MockPublisher struct {
	mu        sync.Mutex
	Published []*domain.VerdictEvent
	PublishFn func(ctx context.Context, event *domain.VerdictEvent) error
	Down      bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishVerdict(ctx context.Context, event *domain.VerdictEvent) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, event)
	return nil
}

// Events returns a copy of the published events.
func (m *MockPublisher) Events() []*domain.VerdictEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.VerdictEvent(nil), m.Published...)
}

func (m *MockPublisher) Healthy() bool {
	return !m.Down
}

func (m *MockPublisher) Close() error {
	return nil
}
