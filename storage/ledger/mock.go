package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/clusslin/exdicom/internal/models"
)

// MockLedger is an in-memory Ledger for tests. FirstRow lets a test pin the
// ordinal of the next appended row; FailAppend and FailProbe switch on the
// degraded paths of the pipeline.
type MockLedger struct {
	mu   sync.Mutex
	rows []models.LedgerEntry

	FirstRow   int64
	FailAppend bool
	FailProbe  bool
	Seen       map[string]bool // identifiers reported as existing by HasIdentifier
}

// NewMockLedger returns an empty mock whose first appended row gets ordinal
// firstRow (spreadsheet-style ledgers start data at row 2).
func NewMockLedger(firstRow int64) *MockLedger {
	if firstRow <= 0 {
		firstRow = 1
	}
	return &MockLedger{FirstRow: firstRow, Seen: make(map[string]bool)}
}

func (m *MockLedger) AppendRow(_ context.Context, columns []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAppend {
		return 0, fmt.Errorf("mock ledger append failure")
	}
	if len(columns) != ColumnCount {
		return 0, fmt.Errorf("ledger row must have %d columns, got %d", ColumnCount, len(columns))
	}
	row := m.FirstRow + int64(len(m.rows))
	m.rows = append(m.rows, entryFromColumns(row, columns))
	return row, nil
}

func (m *MockLedger) HasIdentifier(_ context.Context, identifier string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailProbe {
		return false, fmt.Errorf("mock ledger probe failure")
	}
	if m.Seen[identifier] {
		return true, nil
	}
	for _, e := range m.rows {
		if e.Identifier == identifier {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockLedger) Pending(_ context.Context) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []models.LedgerEntry
	for _, e := range m.rows {
		if e.TransmissionTime == "" {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (m *MockLedger) MarkTransmitted(_ context.Context, rowNumber int64, transmissionTime string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].RowNumber == rowNumber {
			m.rows[i].TransmissionTime = transmissionTime
			return nil
		}
	}
	return fmt.Errorf("row %d: %w", rowNumber, ErrNoSuchRow)
}

// Rows returns a copy of all appended rows, for assertions.
func (m *MockLedger) Rows() []models.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LedgerEntry, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *MockLedger) Close() error { return nil }

var _ Ledger = (*MockLedger)(nil)
