package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zombor/invoice-ai/internal/invoice"
)

// MIME types of the rendered artifacts
const (
	MIMECSV  = "text/csv;charset=utf-8"
	MIMEPDF  = "application/pdf"
	MIMEJSON = "application/json"
)

// Format names an export artifact kind
type Format string

const (
	FormatCSV        Format = "csv"
	FormatOrderLines Format = "order-lines"
	FormatPDF        Format = "pdf"
	FormatJSON       Format = "json"
)

// ErrUnknownFormat is returned by Render for an unsupported Format
var ErrUnknownFormat = errors.New("unknown export format")

// Artifact is a rendered export: its bytes, suggested filename and MIME type
type Artifact struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Exporter renders documents with a fixed display locale
type Exporter struct {
	formatter invoice.Formatter
}

// NewExporter returns an Exporter formatting amounts for locale
func NewExporter(locale string) *Exporter {
	return &Exporter{formatter: invoice.NewFormatter(locale)}
}

// Render produces the artifact of the given format. now dates the filename.
func (e *Exporter) Render(format Format, doc invoice.Document, now time.Time) (Artifact, error) {
	switch format {
	case FormatCSV:
		return CSV(doc, now), nil
	case FormatOrderLines:
		return OrderLinesCSVArtifact(doc, now), nil
	case FormatPDF:
		return e.PDF(doc, now)
	case FormatJSON:
		return JSON(doc, now)
	default:
		return Artifact{}, fmt.Errorf("rendering %q: %w", format, ErrUnknownFormat)
	}
}

// CSV renders the full document as a CSV artifact
func CSV(doc invoice.Document, now time.Time) Artifact {
	return Artifact{
		Data:     []byte(DocumentCSV(doc)),
		Filename: filename("invoice", doc, now, "csv"),
		MIMEType: MIMECSV,
	}
}

// OrderLinesCSVArtifact renders only the order lines as a CSV artifact
func OrderLinesCSVArtifact(doc invoice.Document, now time.Time) Artifact {
	return Artifact{
		Data:     []byte(OrderLinesCSV(doc)),
		Filename: filename("order-lines", doc, now, "csv"),
		MIMEType: MIMECSV,
	}
}

// JSON renders the document as indented JSON
func JSON(doc invoice.Document, now time.Time) (Artifact, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("encoding document: %w", err)
	}
	return Artifact{
		Data:     data,
		Filename: fmt.Sprintf("invoice-data-%d.json", now.UnixMilli()),
		MIMEType: MIMEJSON,
	}, nil
}

// PDF renders the printable layout with the default locale
func PDF(doc invoice.Document, now time.Time) (Artifact, error) {
	return NewExporter(invoice.DefaultLocale).PDF(doc, now)
}

// filename builds <kind>-<documentNumber|export>-<YYYY-MM-DD>.<ext>
func filename(kind string, doc invoice.Document, now time.Time, ext string) string {
	number := doc.DocumentNumber
	if number == "" {
		number = "export"
	}
	return fmt.Sprintf("%s-%s-%s.%s", kind, number, now.UTC().Format("2006-01-02"), ext)
}
