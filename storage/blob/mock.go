package blob

import (
	"context"
	"fmt"
	"sync"
)

// MockStore is an in-memory Store for tests. Failure modes are switched on
// per operation so a test can exercise the pipeline's degraded paths.
type MockStore struct {
	mu    sync.Mutex
	names map[string]string // ref -> current name
	descs map[string]string // ref -> description

	FailRename      bool
	FailDescription bool

	Renames []string // "ref->newName" in call order
}

// NewMockStore seeds the store with ref -> name pairs.
func NewMockStore(files map[string]string) *MockStore {
	names := make(map[string]string, len(files))
	for ref, name := range files {
		names[ref] = name
	}
	return &MockStore{names: names, descs: make(map[string]string)}
}

func (m *MockStore) ArtifactName(_ context.Context, ref string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.names[ref]
	if !ok {
		return "", fmt.Errorf("unknown artifact ref '%s'", ref)
	}
	return name, nil
}

func (m *MockStore) Rename(_ context.Context, ref, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRename {
		return fmt.Errorf("mock rename failure for '%s'", ref)
	}
	if _, ok := m.names[ref]; !ok {
		return fmt.Errorf("unknown artifact ref '%s'", ref)
	}
	m.names[ref] = newName
	m.Renames = append(m.Renames, ref+"->"+newName)
	return nil
}

func (m *MockStore) SetDescription(_ context.Context, ref, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDescription {
		return fmt.Errorf("mock description failure for '%s'", ref)
	}
	m.descs[ref] = text
	return nil
}

// Name returns the current name of ref, for assertions.
func (m *MockStore) Name(ref string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.names[ref]
}

// Description returns the stored description of ref, for assertions.
func (m *MockStore) Description(ref string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.descs[ref]
}

func (m *MockStore) Close() error { return nil }

var _ Store = (*MockStore)(nil)
