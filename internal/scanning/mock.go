package scanning

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/zombor/invoice-ai/internal/invoice"
)

// Mock implements the Analyzer interface with a fixed sample document, for
// demos and running without an extraction backend
type Mock struct {
	delay  time.Duration
	now    func() time.Time
	number func() int
}

// NewMock creates a Mock that answers after delay
func NewMock(delay time.Duration) *Mock {
	return &Mock{
		delay:  delay,
		now:    time.Now,
		number: func() int { return 10000 + rand.IntN(90000) },
	}
}

type mockLine struct {
	description string
	quantity    float64
	unit        string
	unitPrice   float64
}

var mockLines = []mockLine{
	{"Office Chair - Ergonomic", 5, "pcs", 2500},
	{"Standing Desk - Electric", 3, "pcs", 8500},
	{"Monitor Arm - Dual", 5, "pcs", 1200},
	{"Cable Management Kit", 8, "sets", 350},
}

var mockColumns = []invoice.ColumnSpec{
	{Key: "lineNumber", Header: "#", Type: invoice.ColumnNumber, Align: invoice.AlignRight},
	{Key: "description", Header: "Description", Type: invoice.ColumnText, Align: invoice.AlignLeft},
	{Key: "quantity", Header: "Qty", Type: invoice.ColumnNumber, Align: invoice.AlignRight},
	{Key: "unit", Header: "Unit", Type: invoice.ColumnText, Align: invoice.AlignLeft},
	{Key: "unitPrice", Header: "Unit Price", Type: invoice.ColumnCurrency, Align: invoice.AlignRight},
	{Key: "totalAmount", Header: "Total", Type: invoice.ColumnCurrency, Align: invoice.AlignRight},
}

// Analyze waits for the configured delay and returns the sample document
func (m *Mock) Analyze(ctx context.Context, upload Upload) (*invoice.Document, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, asAnalysisError("Analysis cancelled", ctx.Err())
		}
	}

	doc := m.document(upload.FileName)
	return &doc, nil
}

func (m *Mock) document(fileName string) invoice.Document {
	today := m.now().UTC()
	keys := make([]string, len(mockColumns))
	for i, c := range mockColumns {
		keys[i] = c.Key
	}

	lines := make([]invoice.OrderLine, len(mockLines))
	var subtotal float64
	for i, l := range mockLines {
		n := float64(i + 1)
		total := l.quantity * l.unitPrice
		subtotal += total
		line := invoice.NewOrderLine(keys, map[string]invoice.ColumnValue{
			"lineNumber":  {Raw: strconv.Itoa(i + 1), Value: invoice.Number(n)},
			"description": {Raw: l.description, Value: invoice.Text(l.description)},
			"quantity":    {Raw: strconv.FormatFloat(l.quantity, 'f', -1, 64), Value: invoice.Number(l.quantity)},
			"unit":        {Raw: l.unit, Value: invoice.Text(l.unit)},
			"unitPrice":   {Raw: strconv.FormatFloat(l.unitPrice, 'f', 2, 64), Value: invoice.Number(l.unitPrice)},
			"totalAmount": {Raw: strconv.FormatFloat(total, 'f', 2, 64), Value: invoice.Number(total)},
		})
		line.LineNumber = invoice.Float(n)
		line.Description = invoice.String(l.description)
		line.Quantity = invoice.Float(l.quantity)
		line.Unit = l.unit
		line.UnitPrice = invoice.Float(l.unitPrice)
		line.TotalAmount = invoice.Float(total)
		lines[i] = line
	}
	tax := subtotal * 0.25

	return invoice.Document{
		DocumentType:    invoice.TypeInvoice,
		DocumentNumber:  fmt.Sprintf("INV-%d", m.number()),
		DocumentDate:    today.Format("2006-01-02"),
		DueDate:         today.AddDate(0, 0, 30).Format("2006-01-02"),
		PagesProcessed:  invoice.Float(1),
		TotalOrderLines: invoice.Float(float64(len(lines))),
		Customer: invoice.Party{
			Name:    "Acme Corporation",
			Address: "123 Business Street, Oslo 0150",
			Email:   "orders@acme.no",
			Phone:   "+47 22 33 44 55",
			TaxID:   "NO123456789MVA",
		},
		Vendor: invoice.Party{
			Name:         "Sample Supplier AS",
			VendorNumber: "VS-001",
			Address:      "456 Supplier Road, Bergen 5003",
			Email:        "sales@supplier.no",
			Phone:        "+47 55 66 77 88",
			TaxID:        "NO987654321MVA",
		},
		DeliveryAddress: "123 Business Street, Oslo 0150",
		Purchaser:       "John Smith",
		PaymentTerms:    "Net 30 days",
		TableColumns:    append([]invoice.ColumnSpec(nil), mockColumns...),
		OrderLines:      lines,
		Subtotal:        subtotal,
		TaxAmount:       invoice.Float(tax),
		TotalAmount:     subtotal + tax,
		Currency:        invoice.DefaultCurrency,
		Notes:           "Delivered from file: " + fileName,
	}
}

// Close is a no-op
func (m *Mock) Close() error {
	return nil
}
