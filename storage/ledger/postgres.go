package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/clusslin/exdicom/internal/models"
)

// PostgresLedger implements Ledger on a PostgreSQL table for sites that
// cannot reach Google services. Row ordinals come from a bigserial column,
// which under append-only use yields the same 1-based addressing.
type PostgresLedger struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

const createLedgerTable = `
CREATE TABLE IF NOT EXISTS upload_ledger (
    row_number        BIGSERIAL PRIMARY KEY,
    creation_time     TEXT NOT NULL,
    hospital_name     TEXT NOT NULL DEFAULT '',
    exam_type         TEXT NOT NULL DEFAULT '',
    uploader_name     TEXT NOT NULL DEFAULT '',
    uploader_phone    TEXT NOT NULL DEFAULT '',
    uploader_email    TEXT NOT NULL DEFAULT '',
    filename          TEXT NOT NULL DEFAULT '',
    identifier        TEXT NOT NULL,
    transmission_time TEXT NOT NULL DEFAULT ''
)`

// NewPostgresLedger connects a pgx pool and ensures the ledger table exists.
func NewPostgresLedger(ctx context.Context, dsn string, maxConns, minConns int, logger *log.Logger) (*PostgresLedger, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	if minConns > 0 {
		cfg.MinConns = int32(minConns)
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, createLedgerTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure ledger table: %w", err)
	}
	logger.Println("PostgreSQL ledger initialized")
	return &PostgresLedger{pool: pool, logger: logger}, nil
}

// AppendRow inserts one row and returns its serial row number.
func (l *PostgresLedger) AppendRow(ctx context.Context, columns []string) (int64, error) {
	if len(columns) != ColumnCount {
		return 0, fmt.Errorf("ledger row must have %d columns, got %d", ColumnCount, len(columns))
	}
	var row int64
	err := l.pool.QueryRow(ctx, `
		INSERT INTO upload_ledger
			(creation_time, hospital_name, exam_type, uploader_name,
			 uploader_phone, uploader_email, filename, identifier, transmission_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING row_number`,
		columns[ColCreationTime], columns[ColHospitalName], columns[ColExamType],
		columns[ColUploaderName], columns[ColUploaderPhone], columns[ColUploaderEmail],
		columns[ColFilename], columns[ColIdentifier], columns[ColTransmissionTime],
	).Scan(&row)
	if err != nil {
		return 0, fmt.Errorf("failed to append ledger row: %w", err)
	}
	l.logger.Printf("Ledger row %d appended (identifier: %s)", row, columns[ColIdentifier])
	return row, nil
}

// HasIdentifier checks for an existing row with the identifier.
func (l *PostgresLedger) HasIdentifier(ctx context.Context, identifier string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM upload_ledger WHERE identifier = $1)`, identifier,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe identifier '%s': %w", identifier, err)
	}
	return exists, nil
}

// Pending returns rows whose transmission_time is still empty.
func (l *PostgresLedger) Pending(ctx context.Context) ([]models.LedgerEntry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT row_number, creation_time, hospital_name, exam_type, uploader_name,
		       uploader_phone, uploader_email, filename, identifier, transmission_time
		FROM upload_ledger
		WHERE transmission_time = ''
		ORDER BY row_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending rows: %w", err)
	}
	defer rows.Close()

	var pending []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.RowNumber, &e.CreationTime, &e.HospitalName, &e.ExamType,
			&e.UploaderName, &e.UploaderPhone, &e.UploaderEmail, &e.Filename,
			&e.Identifier, &e.TransmissionTime); err != nil {
			return nil, fmt.Errorf("failed to scan pending row: %w", err)
		}
		pending = append(pending, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while reading pending rows: %w", err)
	}
	return pending, nil
}

// MarkTransmitted fills transmission_time on the row.
func (l *PostgresLedger) MarkTransmitted(ctx context.Context, rowNumber int64, transmissionTime string) error {
	tag, err := l.pool.Exec(ctx,
		`UPDATE upload_ledger SET transmission_time = $1 WHERE row_number = $2`,
		transmissionTime, rowNumber)
	if err != nil {
		return fmt.Errorf("failed to mark row %d as transmitted: %w", rowNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("row %d: %w", rowNumber, ErrNoSuchRow)
	}
	l.logger.Printf("Ledger row %d marked transmitted at %s", rowNumber, transmissionTime)
	return nil
}

// Close releases the connection pool.
func (l *PostgresLedger) Close() error {
	l.pool.Close()
	return nil
}

var _ Ledger = (*PostgresLedger)(nil)
