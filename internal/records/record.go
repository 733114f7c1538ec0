package records

import (
	"errors"
	"time"

	"github.com/zombor/invoice-ai/internal/invoice"
)

var (
	// ErrNotFound is returned when no record has the requested ID
	ErrNotFound = errors.New("record not found")

	// ErrNoFile is returned when a record has no stored original upload
	ErrNoFile = errors.New("record has no stored file")

	// ErrUnsupportedFile is returned for uploads that are neither PDF,
	// spreadsheet nor image
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrLineOutOfRange is returned when a column edit names a missing line
	ErrLineOutOfRange = errors.New("order line out of range")
)

// Record is an analyzed document kept in the database. Source holds the
// figures as extracted or entered; Data is Source with derived totals filled in.
type Record struct {
	ID          string            `json:"id"`
	Data        invoice.Document  `json:"data"`
	Source      *invoice.Document `json:"source,omitempty"`
	FileName    string            `json:"fileName"`
	ContentType string            `json:"contentType,omitempty"`
	StoredFile  string            `json:"storedFile,omitempty"` // Name of the original upload in Storage
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// source is the document edits apply to. Records saved without one fall
// back to Data.
func (r *Record) source() invoice.Document {
	if r.Source != nil {
		return *r.Source
	}
	return r.Data
}

// ImportResult counts the records accepted and rejected by an import
type ImportResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}
