package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/clusslin/exdicom/config"
)

// Backend identifies a ledger implementation
type Backend string

const (
	Sheets   Backend = "sheets"
	Postgres Backend = "postgres"
)

// New creates a ledger backend based on the configuration.
func New(ctx context.Context, cfg *config.LedgerConfig, google *config.GoogleConfig, logger *log.Logger) (Ledger, error) {
	switch Backend(cfg.Backend) {
	case Sheets, "":
		// Sheets is the default backend
		return NewSheetsLedger(ctx, google.CredentialsFile, google.SpreadsheetID, google.SheetName, logger)
	case Postgres:
		return NewPostgresLedger(ctx, cfg.Database.DSN, cfg.Database.MaxConnections, cfg.Database.MinConnections, logger)
	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Backend)
	}
}
