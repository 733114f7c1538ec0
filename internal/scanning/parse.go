package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zombor/invoice-ai/internal/invoice"
)

// dateLayouts are the date formats accepted from a model, besides ISO 8601
var dateLayouts = []string{
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
	"02-01-2006",
}

// parseDocumentJSON parses a model response into a document
func parseDocumentJSON(text string) (*invoice.Document, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var doc invoice.Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	doc.DocumentDate = normalizeDate(doc.DocumentDate)
	doc.DueDate = normalizeDate(doc.DueDate)
	doc.Currency = strings.ToUpper(strings.TrimSpace(doc.Currency))
	doc.DocumentNumber = strings.TrimSpace(doc.DocumentNumber)
	if doc.DocumentType == "" {
		doc.DocumentType = invoice.TypeInvoice
	}

	return &doc, nil
}

// normalizeDate rewrites a recognised date as YYYY-MM-DD. Unrecognised text
// is kept as printed.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.Format("2006-01-02")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return s
}

// withCounts records how much of the upload was read, unless the model
// already reported it
func withCounts(doc *invoice.Document, c content) *invoice.Document {
	if c.pages > 0 && doc.PagesProcessed == nil {
		doc.PagesProcessed = invoice.Float(float64(c.pages))
	}
	if c.sheets > 0 && doc.SheetsProcessed == nil {
		doc.SheetsProcessed = invoice.Float(float64(c.sheets))
	}
	if doc.TotalOrderLines == nil {
		doc.TotalOrderLines = invoice.Float(float64(len(doc.OrderLines)))
	}
	return doc
}
