package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/clusslin/exdicom/internal/models"
)

// MockDispatcher records dispatched events for tests.
type MockDispatcher struct {
	mu       sync.Mutex
	Events   []models.WebhookEvent
	FailSend bool
}

func NewMockDispatcher() *MockDispatcher { return &MockDispatcher{} }

func (m *MockDispatcher) Dispatch(_ context.Context, event *models.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSend {
		return fmt.Errorf("mock dispatch failure")
	}
	m.Events = append(m.Events, *event)
	return nil
}

// Last returns the most recently dispatched event, or nil.
func (m *MockDispatcher) Last() *models.WebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Events) == 0 {
		return nil
	}
	e := m.Events[len(m.Events)-1]
	return &e
}

func (m *MockDispatcher) Close() error { return nil }

var _ Dispatcher = (*MockDispatcher)(nil)
