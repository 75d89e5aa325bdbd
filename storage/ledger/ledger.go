package ledger

import (
	"context"
	"errors"

	"github.com/clusslin/exdicom/internal/models"
)

// ErrNoSuchRow reports an update addressed to a row ordinal that was never
// appended.
var ErrNoSuchRow = errors.New("ledger row does not exist")

// Column layout of one ledger row. The order is a wire contract shared with
// the downstream relay, which addresses cells by position.
const (
	ColCreationTime = iota
	ColHospitalName
	ColExamType
	ColUploaderName
	ColUploaderPhone
	ColUploaderEmail
	ColFilename
	ColIdentifier
	ColTransmissionTime
	ColumnCount
)

// Ledger is the append-only tabular store recording one row per completed
// upload. Row ordinals are 1-based and stable: the downstream relay uses them
// to patch the transmission-time column once a bundle has been forwarded.
type Ledger interface {
	// AppendRow appends exactly one row (ColumnCount ordered fields) and
	// returns its 1-based ordinal.
	AppendRow(ctx context.Context, columns []string) (int64, error)

	// HasIdentifier reports whether any existing row carries the identifier.
	HasIdentifier(ctx context.Context, identifier string) (bool, error)

	// Pending returns the rows whose transmission-time column is still empty.
	Pending(ctx context.Context) ([]models.LedgerEntry, error)

	// MarkTransmitted fills the transmission-time column of the given row.
	MarkTransmitted(ctx context.Context, rowNumber int64, transmissionTime string) error

	// Close releases the backend connection.
	Close() error
}

// Columns lays out a submission as one ledger row in the fixed column order.
// The transmission-time column starts empty.
func Columns(sub *models.UploadSubmission, identifier, creationTime string) []string {
	row := make([]string, ColumnCount)
	row[ColCreationTime] = creationTime
	row[ColHospitalName] = sub.HospitalName
	row[ColExamType] = sub.ExamType
	row[ColUploaderName] = sub.UploaderName
	row[ColUploaderPhone] = sub.UploaderPhone
	row[ColUploaderEmail] = sub.UploaderEmail
	row[ColFilename] = sub.Filename
	row[ColIdentifier] = identifier
	row[ColTransmissionTime] = ""
	return row
}

// entryFromColumns rebuilds a LedgerEntry from a raw row. Short rows (a
// trailing run of empty cells is not returned by every backend) are padded.
func entryFromColumns(rowNumber int64, columns []string) models.LedgerEntry {
	padded := make([]string, ColumnCount)
	copy(padded, columns)
	return models.LedgerEntry{
		RowNumber:        rowNumber,
		CreationTime:     padded[ColCreationTime],
		HospitalName:     padded[ColHospitalName],
		ExamType:         padded[ColExamType],
		UploaderName:     padded[ColUploaderName],
		UploaderPhone:    padded[ColUploaderPhone],
		UploaderEmail:    padded[ColUploaderEmail],
		Filename:         padded[ColFilename],
		Identifier:       padded[ColIdentifier],
		TransmissionTime: padded[ColTransmissionTime],
	}
}
