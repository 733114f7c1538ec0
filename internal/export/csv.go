package export

import (
	"strings"

	"github.com/zombor/invoice-ai/internal/invoice"
)

const (
	documentLinesHeader = "Line Number,Description,Quantity,Unit,Unit Price,Total Amount"
	importLinesHeader   = "Line Number,Product Name,EAN,Description,Quantity,Unit,Unit Price,Total Amount"
)

// DocumentCSV renders the whole document as sectioned CSV. Rows are joined
// with "\n" and there is no trailing newline.
func DocumentCSV(doc invoice.Document) string {
	var rows []string
	add := func(r ...string) { rows = append(rows, r...) }

	docType := string(doc.DocumentType)
	if docType == "" {
		docType = string(invoice.TypeInvoice)
	}
	add("Document Information",
		"Document Type,"+escape(docType),
		"Document Number,"+escape(doc.DocumentNumber),
		"Date,"+escape(doc.DocumentDate))
	if doc.DueDate != "" {
		add("Due Date," + escape(doc.DueDate))
	}
	if doc.Purchaser != "" {
		add("Purchaser," + escape(doc.Purchaser))
	}
	add("")

	add("Customer Information")
	add(partyRows(doc.Customer, false)...)
	add("")

	add("Vendor Information")
	add(partyRows(doc.Vendor, true)...)
	add("")

	if doc.DeliveryAddress != "" {
		add("Delivery Address", "Address,"+escape(flattenAddress(doc.DeliveryAddress)), "")
	}

	add("Order Lines")
	if doc.UsesDynamicColumns() {
		add(dynamicRows(doc)...)
	} else {
		add(documentLinesHeader)
		for _, line := range doc.OrderLines {
			add(joinRow(
				optional(line.LineNumber),
				line.Label(),
				optional(line.Quantity),
				line.Unit,
				optional(line.UnitPrice),
				optional(line.TotalAmount),
			))
		}
	}
	add("")

	add("Totals", "Subtotal,"+number(doc.Subtotal))
	if doc.TaxAmount != nil {
		add("Tax Amount," + number(*doc.TaxAmount))
	}
	add("Total Amount,"+number(doc.TotalAmount), "Currency,"+escape(doc.Currency))

	if doc.Notes != "" {
		add("", "Notes", escape(doc.Notes))
	}

	return strings.Join(rows, "\n")
}

// OrderLinesCSV renders only the order-lines table, for import into other
// systems. The fixed schema adds product name and EAN.
func OrderLinesCSV(doc invoice.Document) string {
	if doc.UsesDynamicColumns() {
		return strings.Join(dynamicRows(doc), "\n")
	}

	rows := []string{importLinesHeader}
	for _, line := range doc.OrderLines {
		rows = append(rows, joinRow(
			optional(line.LineNumber),
			cellValue(line.ProductName),
			cellValue(line.EAN),
			optionalText(line.Description),
			optional(line.Quantity),
			line.Unit,
			optional(line.UnitPrice),
			optional(line.TotalAmount),
		))
	}
	return strings.Join(rows, "\n")
}

// dynamicRows renders the header and one row per line following the
// declared column schema
func dynamicRows(doc invoice.Document) []string {
	headers := make([]string, len(doc.TableColumns))
	for i, col := range doc.TableColumns {
		headers[i] = col.Header
	}
	rows := []string{joinRow(headers...)}

	for _, line := range doc.OrderLines {
		cells := make([]string, len(doc.TableColumns))
		for i, col := range doc.TableColumns {
			cells[i], _ = line.Cell(col.Key)
		}
		rows = append(rows, joinRow(cells...))
	}
	return rows
}

func partyRows(p invoice.Party, vendor bool) []string {
	rows := []string{"Name," + escape(p.Name)}
	if p.Address != "" {
		rows = append(rows, "Address,"+escape(flattenAddress(p.Address)))
	}
	if p.Email != "" {
		rows = append(rows, "Email,"+escape(p.Email))
	}
	if p.Phone != "" {
		rows = append(rows, "Phone,"+escape(p.Phone))
	}
	if p.TaxID != "" {
		rows = append(rows, "Tax ID,"+escape(p.TaxID))
	}
	if vendor && p.VendorNumber != "" {
		rows = append(rows, "Vendor Number,"+escape(p.VendorNumber))
	}
	return rows
}

func joinRow(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = escape(f)
	}
	return strings.Join(escaped, ",")
}

// escape quotes a field containing a comma, a quote or a newline, doubling
// embedded quotes
func escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func flattenAddress(s string) string {
	return strings.ReplaceAll(s, "\n", ", ")
}

func number(f float64) string {
	return invoice.Number(f).String()
}

func optional(f *float64) string {
	if f == nil {
		return ""
	}
	return number(*f)
}

func optionalText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cellValue(cv *invoice.ColumnValue) string {
	if cv == nil {
		return ""
	}
	return cv.Value.String()
}
