package ledger

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/clusslin/exdicom/internal/models"
)

// SheetsLedger implements Ledger on a Google Sheets spreadsheet, the
// production ledger of the upload workflow. Row ordinals are spreadsheet row
// numbers, so row 1 is the header and data starts at row 2.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// updatedRangeRe extracts the row number from an append response range such
// as "Uploads!A42:I42".
var updatedRangeRe = regexp.MustCompile(`![A-Z]+(\d+)`)

// NewSheetsLedger builds a Sheets-backed ledger authenticated with a service
// account credentials file.
func NewSheetsLedger(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *log.Logger) (*SheetsLedger, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets ledger configuration incomplete: spreadsheet_id is required")
	}
	if sheetName == "" {
		sheetName = "Uploads"
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	logger.Printf("Google Sheets ledger initialized, spreadsheet: %s, sheet: %s", spreadsheetID, sheetName)
	return &SheetsLedger{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName, logger: logger}, nil
}

// AppendRow appends one row below the existing table and returns its
// spreadsheet row number.
func (l *SheetsLedger) AppendRow(ctx context.Context, columns []string) (int64, error) {
	if len(columns) != ColumnCount {
		return 0, fmt.Errorf("ledger row must have %d columns, got %d", ColumnCount, len(columns))
	}
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{values}}

	resp, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, l.dataRange(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to append ledger row: %w", err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return 0, fmt.Errorf("append response carried no updated range")
	}
	row, err := parseRowOrdinal(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, err
	}
	l.logger.Printf("Ledger row %d appended (identifier: %s)", row, columns[ColIdentifier])
	return row, nil
}

// HasIdentifier scans the identifier column for an exact match.
func (l *SheetsLedger) HasIdentifier(ctx context.Context, identifier string) (bool, error) {
	rng := fmt.Sprintf("%s!H2:H", l.sheetName)
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("failed to read identifier column: %w", err)
	}
	for _, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == identifier {
			return true, nil
		}
	}
	return false, nil
}

// Pending returns the data rows whose transmission-time cell is empty.
func (l *SheetsLedger) Pending(ctx context.Context) ([]models.LedgerEntry, error) {
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, l.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}
	var pending []models.LedgerEntry
	for i, raw := range resp.Values {
		columns := make([]string, 0, len(raw))
		for _, cell := range raw {
			columns = append(columns, fmt.Sprint(cell))
		}
		entry := entryFromColumns(int64(i+2), columns) // data starts at row 2
		if entry.Identifier == "" {
			continue
		}
		if entry.TransmissionTime == "" {
			pending = append(pending, entry)
		}
	}
	return pending, nil
}

// MarkTransmitted writes the transmission time into column I of the row.
func (l *SheetsLedger) MarkTransmitted(ctx context.Context, rowNumber int64, transmissionTime string) error {
	if rowNumber < 2 {
		return fmt.Errorf("invalid ledger row number %d", rowNumber)
	}
	rng := fmt.Sprintf("%s!I%d", l.sheetName, rowNumber)
	vr := &sheets.ValueRange{Values: [][]interface{}{{transmissionTime}}}
	_, err := l.svc.Spreadsheets.Values.Update(l.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark row %d as transmitted: %w", rowNumber, err)
	}
	l.logger.Printf("Ledger row %d marked transmitted at %s", rowNumber, transmissionTime)
	return nil
}

// Close is a no-op for the Sheets HTTP client.
func (l *SheetsLedger) Close() error { return nil }

func (l *SheetsLedger) dataRange() string {
	return fmt.Sprintf("%s!A2:I", l.sheetName)
}

func parseRowOrdinal(updatedRange string) (int64, error) {
	m := updatedRangeRe.FindStringSubmatch(updatedRange)
	if m == nil {
		return 0, fmt.Errorf("unable to parse row number from range '%s'", updatedRange)
	}
	row, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse row number from range '%s': %w", updatedRange, err)
	}
	return row, nil
}

var _ Ledger = (*SheetsLedger)(nil)
