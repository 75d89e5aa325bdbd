package notify

import (
	"context"
	"fmt"
	"sync"
)

// Confirmation records one NotifySubmitter call.
type Confirmation struct {
	Email      string
	Identifier string
	Hospital   string
}

// Alert records one NotifyOperator call.
type Alert struct {
	Kind    string
	Message string
	Details map[string]string
}

// MockNotifier records deliveries for tests.
type MockNotifier struct {
	mu            sync.Mutex
	Confirmations []Confirmation
	Alerts        []Alert
	FailSend      bool
}

func NewMockNotifier() *MockNotifier { return &MockNotifier{} }

func (m *MockNotifier) NotifySubmitter(_ context.Context, email, identifier, hospital string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSend {
		return fmt.Errorf("mock mail failure")
	}
	m.Confirmations = append(m.Confirmations, Confirmation{Email: email, Identifier: identifier, Hospital: hospital})
	return nil
}

func (m *MockNotifier) NotifyOperator(_ context.Context, kind, message string, details map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSend {
		return fmt.Errorf("mock mail failure")
	}
	m.Alerts = append(m.Alerts, Alert{Kind: kind, Message: message, Details: details})
	return nil
}

// ConfirmationCount returns the number of recorded confirmations.
func (m *MockNotifier) ConfirmationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Confirmations)
}

var _ Notifier = (*MockNotifier)(nil)
