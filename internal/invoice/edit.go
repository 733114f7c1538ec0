package invoice

import (
	"strconv"
	"strings"
)

// numericFields are field names whose edits are parsed as numbers
var numericFields = map[string]bool{
	"subtotal":        true,
	"taxAmount":       true,
	"totalAmount":     true,
	"quantity":        true,
	"unitPrice":       true,
	"pagesProcessed":  true,
	"totalOrderLines": true,
}

// field reads and writes one statically declared field of T
type field[T any] struct {
	get func(*T) Value
	set func(*T, Value)
}

func textField[T any](ptr func(*T) *string) field[T] {
	return field[T]{
		get: func(t *T) Value { return Text(*ptr(t)) },
		set: func(t *T, v Value) { *ptr(t) = v.String() },
	}
}

func optionalTextField[T any](ptr func(*T) **string) field[T] {
	return field[T]{
		get: func(t *T) Value {
			if p := *ptr(t); p != nil {
				return Text(*p)
			}
			return Value{}
		},
		set: func(t *T, v Value) { *ptr(t) = String(v.String()) },
	}
}

func numberField[T any](ptr func(*T) *float64) field[T] {
	return field[T]{
		get: func(t *T) Value { return Number(*ptr(t)) },
		set: func(t *T, v Value) { *ptr(t) = ParseNumeric(v) },
	}
}

func optionalNumberField[T any](ptr func(*T) **float64) field[T] {
	return field[T]{
		get: func(t *T) Value {
			if p := *ptr(t); p != nil {
				return Number(*p)
			}
			return Value{}
		},
		set: func(t *T, v Value) { *ptr(t) = Float(ParseNumeric(v)) },
	}
}

var documentFields = map[string]field[Document]{
	"documentType": {
		get: func(d *Document) Value { return Text(string(d.DocumentType)) },
		set: func(d *Document, v Value) { d.DocumentType = DocumentType(v.String()) },
	},
	"documentNumber":  textField(func(d *Document) *string { return &d.DocumentNumber }),
	"invoiceNumber":   textField(func(d *Document) *string { return &d.DocumentNumber }),
	"documentDate":    textField(func(d *Document) *string { return &d.DocumentDate }),
	"invoiceDate":     textField(func(d *Document) *string { return &d.DocumentDate }),
	"dueDate":         textField(func(d *Document) *string { return &d.DueDate }),
	"deliveryAddress": textField(func(d *Document) *string { return &d.DeliveryAddress }),
	"purchaser":       textField(func(d *Document) *string { return &d.Purchaser }),
	"paymentTerms":    textField(func(d *Document) *string { return &d.PaymentTerms }),
	"currency":        textField(func(d *Document) *string { return &d.Currency }),
	"notes":           textField(func(d *Document) *string { return &d.Notes }),
	"subtotal":        numberField(func(d *Document) *float64 { return &d.Subtotal }),
	"totalAmount":     numberField(func(d *Document) *float64 { return &d.TotalAmount }),
	"taxAmount":       optionalNumberField(func(d *Document) **float64 { return &d.TaxAmount }),
	"pagesProcessed":  optionalNumberField(func(d *Document) **float64 { return &d.PagesProcessed }),
	"sheetsProcessed": optionalNumberField(func(d *Document) **float64 { return &d.SheetsProcessed }),
	"totalOrderLines": optionalNumberField(func(d *Document) **float64 { return &d.TotalOrderLines }),
}

var partyFields = map[string]field[Party]{
	"name":    textField(func(p *Party) *string { return &p.Name }),
	"address": textField(func(p *Party) *string { return &p.Address }),
	"email":   textField(func(p *Party) *string { return &p.Email }),
	"phone":   textField(func(p *Party) *string { return &p.Phone }),
	"taxId":   textField(func(p *Party) *string { return &p.TaxID }),
}

var vendorNumberField = textField(func(p *Party) *string { return &p.VendorNumber })

var lineFields = map[string]field[OrderLine]{
	"description":      optionalTextField(func(l *OrderLine) **string { return &l.Description }),
	"unit":             textField(func(l *OrderLine) *string { return &l.Unit }),
	"itemNumber":       textField(func(l *OrderLine) *string { return &l.ItemNumber }),
	"brand":            textField(func(l *OrderLine) *string { return &l.Brand }),
	"vendorItemNumber": textField(func(l *OrderLine) *string { return &l.VendorItemNumber }),
	"lineNumber":       optionalNumberField(func(l *OrderLine) **float64 { return &l.LineNumber }),
	"quantity":         optionalNumberField(func(l *OrderLine) **float64 { return &l.Quantity }),
	"unitPrice":        optionalNumberField(func(l *OrderLine) **float64 { return &l.UnitPrice }),
	"totalAmount":      optionalNumberField(func(l *OrderLine) **float64 { return &l.TotalAmount }),
	"discountPercent":  optionalNumberField(func(l *OrderLine) **float64 { return &l.DiscountPercent }),
}

// editValue types raw input for the field named key
func editValue(key, raw string) Value {
	if numericFields[key] {
		return Number(ParseNumeric(raw))
	}
	return Text(raw)
}

// cellValue types raw input for a table column, by the column key's class
func cellValue(columnKey, raw string) ColumnValue {
	if IsNumericColumn(columnKey) {
		return ColumnValue{Raw: raw, Value: Number(ParseNumeric(raw))}
	}
	return ColumnValue{Raw: raw, Value: Text(raw)}
}

// SetPath returns a copy of doc with the field at the dotted path set from
// raw input. Paths address top-level fields ("subtotal"), parties
// ("customer.name", "vendor.vendorNumber"), order-line fields
// ("orderLines.0.quantity") and cells ("orderLines.0.columns.qty",
// "orderLines.0.columns.qty.raw"). Unknown paths and out-of-range line
// indexes return doc unchanged.
func SetPath(doc Document, path, raw string) Document {
	out := doc
	if !setDocumentPath(&out, strings.Split(path, "."), raw) {
		return doc
	}
	return out
}

// GetPath reads the field at a dotted path. A cell path reads the cell's raw
// text. Unresolvable paths and absent values read as empty text.
func GetPath(doc Document, path string) Value {
	v, ok := getDocumentPath(&doc, strings.Split(path, "."))
	if !ok || v.IsNull() {
		return Text("")
	}
	return v
}

// SetColumn returns a copy of doc with one cell of one line replaced. Numeric
// columns store the parsed number alongside the raw input. Only the edited
// line and its column map are copied; other lines are shared with doc.
func SetColumn(doc Document, lineIndex int, columnKey, raw string) Document {
	if lineIndex < 0 || lineIndex >= len(doc.OrderLines) {
		return doc
	}
	line := doc.OrderLines[lineIndex].withColumn(columnKey, cellValue(columnKey, raw))
	return replaceLine(doc, lineIndex, line)
}

func replaceLine(doc Document, index int, line OrderLine) Document {
	lines := make([]OrderLine, len(doc.OrderLines))
	copy(lines, doc.OrderLines)
	lines[index] = line
	doc.OrderLines = lines
	return doc
}

func setDocumentPath(d *Document, keys []string, raw string) bool {
	head, rest := keys[0], keys[1:]
	switch head {
	case "customer", "vendor":
		if len(rest) != 1 {
			return false
		}
		party := &d.Customer
		if head == "vendor" {
			party = &d.Vendor
		}
		f, ok := partyFields[rest[0]]
		if !ok && head == "vendor" && rest[0] == "vendorNumber" {
			f, ok = vendorNumberField, true
		}
		if !ok {
			return false
		}
		f.set(party, editValue(rest[0], raw))
		return true
	case "orderLines":
		return setLinePath(d, rest, raw)
	}

	f, ok := documentFields[head]
	if !ok || len(rest) != 0 {
		return false
	}
	f.set(d, editValue(head, raw))
	return true
}

func setLinePath(d *Document, keys []string, raw string) bool {
	if len(keys) < 2 {
		return false
	}
	index, err := strconv.Atoi(keys[0])
	if err != nil || index < 0 || index >= len(d.OrderLines) {
		return false
	}
	line := d.OrderLines[index]
	keys = keys[1:]

	switch keys[0] {
	case "columns":
		if len(keys) < 2 || len(keys) > 3 {
			return false
		}
		columnKey := keys[1]
		cell := cellValue(columnKey, raw)
		if len(keys) == 3 {
			current := line.Columns[columnKey]
			switch keys[2] {
			case "raw":
				current.Raw = raw
			case "value":
				current.Value = cell.Value
			default:
				return false
			}
			cell = current
		}
		line = line.withColumn(columnKey, cell)
	case "productName", "ean":
		target := &line.ProductName
		if keys[0] == "ean" {
			target = &line.EAN
		}
		cell := ColumnValue{Raw: raw, Value: Text(raw)}
		if len(keys) == 2 {
			if *target != nil {
				cell = **target
			}
			switch keys[1] {
			case "raw":
				cell.Raw = raw
			case "value":
				cell.Value = Text(raw)
			default:
				return false
			}
		} else if len(keys) != 1 {
			return false
		}
		*target = &cell
	default:
		f, ok := lineFields[keys[0]]
		if !ok || len(keys) != 1 {
			return false
		}
		f.set(&line, editValue(keys[0], raw))
	}

	*d = replaceLine(*d, index, line)
	return true
}

func getDocumentPath(d *Document, keys []string) (Value, bool) {
	head, rest := keys[0], keys[1:]
	switch head {
	case "customer", "vendor":
		if len(rest) != 1 {
			return Value{}, false
		}
		party := &d.Customer
		if head == "vendor" {
			party = &d.Vendor
		}
		if f, ok := partyFields[rest[0]]; ok {
			return f.get(party), true
		}
		if head == "vendor" && rest[0] == "vendorNumber" {
			return vendorNumberField.get(party), true
		}
		return Value{}, false
	case "orderLines":
		return getLinePath(d, rest)
	}

	f, ok := documentFields[head]
	if !ok || len(rest) != 0 {
		return Value{}, false
	}
	return f.get(d), true
}

func getLinePath(d *Document, keys []string) (Value, bool) {
	if len(keys) < 2 {
		return Value{}, false
	}
	index, err := strconv.Atoi(keys[0])
	if err != nil || index < 0 || index >= len(d.OrderLines) {
		return Value{}, false
	}
	line := d.OrderLines[index]
	keys = keys[1:]

	switch keys[0] {
	case "columns":
		if len(keys) < 2 || len(keys) > 3 {
			return Value{}, false
		}
		cell, ok := line.Columns[keys[1]]
		if !ok {
			return Value{}, false
		}
		if len(keys) == 2 {
			// the raw text is what an editor shows and re-submits
			return Text(cell.Raw), true
		}
		return cellPart(cell, keys[2])
	case "productName", "ean":
		cell := line.ProductName
		if keys[0] == "ean" {
			cell = line.EAN
		}
		if cell == nil {
			return Value{}, false
		}
		if len(keys) == 1 {
			return Text(cell.Display()), true
		}
		if len(keys) != 2 {
			return Value{}, false
		}
		return cellPart(*cell, keys[1])
	default:
		f, ok := lineFields[keys[0]]
		if !ok || len(keys) != 1 {
			return Value{}, false
		}
		return f.get(&line), true
	}
}

func cellPart(cell ColumnValue, part string) (Value, bool) {
	switch part {
	case "raw":
		return Text(cell.Raw), true
	case "value":
		return cell.Value, true
	default:
		return Value{}, false
	}
}
