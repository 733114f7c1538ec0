package scanning

import (
	"context"

	"github.com/zombor/invoice-ai/internal/invoice"
)

// Upload is a document file submitted for analysis
type Upload struct {
	Data        []byte
	FileName    string
	ContentType string
}

// Analyzer defines the interface for document extraction
type Analyzer interface {
	// Analyze extracts a document from an uploaded file. Failures are
	// returned as *AnalysisError.
	Analyze(ctx context.Context, upload Upload) (*invoice.Document, error)
	// Close releases the analyzer's resources
	Close() error
}
