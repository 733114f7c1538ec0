package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/invoice-ai/internal/export"
	"github.com/zombor/invoice-ai/internal/invoice"
	"github.com/zombor/invoice-ai/internal/scanning"
)

// IDGenerator generates unique IDs for records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random (version 4) UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles stored invoice operations
type Service struct {
	db          DB
	analyzer    scanning.Analyzer
	storage     Storage
	exporter    *export.Exporter
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, analyzer scanning.Analyzer, storage Storage, exporter *export.Exporter) *Service {
	return NewServiceWithDeps(db, analyzer, storage, exporter, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, analyzer scanning.Analyzer, storage Storage, exporter *export.Exporter, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		analyzer:    analyzer,
		storage:     storage,
		exporter:    exporter,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename keeps alphanumerics, spaces, hyphens and underscores in
// the base name and truncates it to 50 characters
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(repeatedSpaces.ReplaceAllString(base, " "))

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "document"
	}
	return base + ext
}

// Process stores an upload, analyzes it and saves the reconciled document
func (s *Service) Process(ctx context.Context, upload scanning.Upload) (*Record, error) {
	upload.ContentType = scanning.DetectContentType(upload.ContentType, upload.FileName, upload.Data)
	if !scanning.IsSupported(upload.ContentType, upload.FileName) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, upload.ContentType)
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	storedFile, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(upload.FileName)), upload.Data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	doc, err := s.analyzer.Analyze(ctx, upload)
	if err != nil {
		slog.Error("Failed to analyze document",
			"filename", upload.FileName,
			"content_type", upload.ContentType,
			"file_size", len(upload.Data),
			"kind", scanning.KindOf(err),
			"error", err,
		)
		s.removeFile(storedFile)
		return nil, fmt.Errorf("analyzing document: %w", err)
	}

	source := *doc
	record := &Record{
		ID:          id,
		Data:        invoice.Reconcile(source),
		Source:      &source,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		StoredFile:  storedFile,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveRecord(record); err != nil {
		s.removeFile(storedFile)
		return nil, fmt.Errorf("saving record to database: %w", err)
	}

	slog.Info("Processed document",
		"id", id,
		"filename", upload.FileName,
		"type", record.Data.DocumentType,
		"order_lines", len(record.Data.OrderLines),
	)
	return record, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// Get retrieves a record by ID
func (s *Service) Get(id string) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// List returns all records, oldest first
func (s *Service) List() ([]*Record, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

// Update replaces the document of a record
func (s *Service) Update(id string, doc invoice.Document) (*Record, error) {
	return s.modify(id, func(invoice.Document) (invoice.Document, error) {
		return doc, nil
	})
}

// UpdateField sets one field of a record's document by its dotted path
func (s *Service) UpdateField(id, path, raw string) (*Record, error) {
	return s.modify(id, func(doc invoice.Document) (invoice.Document, error) {
		return invoice.SetPath(doc, path, raw), nil
	})
}

// UpdateColumn sets one table cell of a record's document
func (s *Service) UpdateColumn(id string, lineIndex int, columnKey, raw string) (*Record, error) {
	return s.modify(id, func(doc invoice.Document) (invoice.Document, error) {
		if lineIndex < 0 || lineIndex >= len(doc.OrderLines) {
			return doc, fmt.Errorf("%w: %d", ErrLineOutOfRange, lineIndex)
		}
		return invoice.SetColumn(doc, lineIndex, columnKey, raw), nil
	})
}

// modify applies edit to a record's source document, reconciles the totals
// from it and saves the result
func (s *Service) modify(id string, edit func(invoice.Document) (invoice.Document, error)) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}

	doc, err := edit(record.source())
	if err != nil {
		return nil, fmt.Errorf("editing record %s: %w", id, err)
	}

	updated := *record
	updated.Source = &doc
	updated.Data = invoice.Reconcile(doc)
	updated.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveRecord(&updated); err != nil {
		return nil, fmt.Errorf("saving record: %w", err)
	}
	return &updated, nil
}

// Delete removes a record and its stored file
func (s *Service) Delete(id string) error {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return fmt.Errorf("getting record for deletion: %w", err)
	}

	if record.StoredFile != "" {
		s.removeFile(record.StoredFile)
	}

	if err := s.db.DeleteRecord(id); err != nil {
		return fmt.Errorf("deleting record from database: %w", err)
	}
	return nil
}

// File returns the original upload of a record and its content type
func (s *Service) File(id string) ([]byte, string, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting record: %w", err)
	}
	if record.StoredFile == "" {
		return nil, "", fmt.Errorf("record %s: %w", id, ErrNoFile)
	}

	data, err := s.storage.Get(record.StoredFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting record file: %w", err)
	}
	return data, record.ContentType, nil
}

// Export renders a record's document in the given format
func (s *Service) Export(id string, format export.Format) (export.Artifact, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return export.Artifact{}, fmt.Errorf("getting record: %w", err)
	}

	artifact, err := s.exporter.Render(format, record.Data, s.timeSource.Now())
	if err != nil {
		return export.Artifact{}, fmt.Errorf("exporting record %s: %w", id, err)
	}
	return artifact, nil
}

// ExportAll returns every record as indented JSON
func (s *Service) ExportAll() ([]byte, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return data, nil
}

// importedRecord is a backup entry; pointer fields detect absent values
type importedRecord struct {
	ID          string            `json:"id"`
	Data        *invoice.Document `json:"data"`
	Source      *invoice.Document `json:"source"`
	FileName    string            `json:"fileName"`
	ContentType string            `json:"contentType"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ImportAll adds the records of a backup made by ExportAll. Entries whose ID
// already exists, or that lack an ID, data or file name, are counted as
// failed. A backup that is not a JSON array counts one failure and returns
// the decoding error.
func (s *Service) ImportAll(data []byte) (ImportResult, error) {
	var result ImportResult

	var entries []importedRecord
	if err := json.Unmarshal(data, &entries); err != nil {
		result.Failed++
		return result, fmt.Errorf("decoding backup: %w", err)
	}

	existing, err := s.List()
	if err != nil {
		return result, err
	}
	ids := make(map[string]bool, len(existing))
	for _, r := range existing {
		ids[r.ID] = true
	}

	now := s.timeSource.Now()
	for _, entry := range entries {
		if ids[entry.ID] || entry.ID == "" || entry.Data == nil || entry.FileName == "" {
			result.Failed++
			continue
		}

		record := &Record{
			ID:          entry.ID,
			Data:        *entry.Data,
			Source:      entry.Source,
			FileName:    entry.FileName,
			ContentType: entry.ContentType,
			CreatedAt:   entry.CreatedAt,
			UpdatedAt:   entry.UpdatedAt,
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		if record.UpdatedAt.IsZero() {
			record.UpdatedAt = now
		}

		if err := s.db.SaveRecord(record); err != nil {
			slog.Error("Failed to import record", "id", entry.ID, "error", err)
			result.Failed++
			continue
		}
		ids[entry.ID] = true
		result.Success++
	}

	slog.Info("Imported records", "success", result.Success, "failed", result.Failed)
	return result, nil
}
