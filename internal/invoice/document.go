package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// DocumentType tags the kind of commercial document. Extractors may supply
// values outside the known set.
type DocumentType string

const (
	TypeOrder   DocumentType = "order"
	TypeInvoice DocumentType = "invoice"
	TypeQuote   DocumentType = "quote"
)

var documentTypeLabels = map[DocumentType]string{
	TypeOrder:   "Bestilling",
	TypeInvoice: "Faktura",
	TypeQuote:   "Tilbud",
}

// Label returns the Norwegian display label for the document type
func (t DocumentType) Label() string {
	if t == "" {
		return "Dokument"
	}
	if label, ok := documentTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ColumnType controls how a column's values are formatted
type ColumnType string

const (
	ColumnText       ColumnType = "text"
	ColumnNumber     ColumnType = "number"
	ColumnCurrency   ColumnType = "currency"
	ColumnPercentage ColumnType = "percentage"
)

// Align is the horizontal alignment of a column
type Align string

const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// ColumnSpec declares one column of the order-lines table
type ColumnSpec struct {
	Key    string     `json:"key"`
	Header string     `json:"header"`
	Type   ColumnType `json:"type"`
	Align  Align      `json:"align"`
}

// ColumnValue is a table cell: the extracted text and its parsed form
type ColumnValue struct {
	Raw   string `json:"raw"`
	Value Value  `json:"value"`
}

// Display returns value ?? raw
func (c ColumnValue) Display() string {
	if !c.Value.IsNull() {
		return c.Value.String()
	}
	return c.Raw
}

// UnmarshalJSON accepts the {raw, value} object as well as a bare scalar,
// which some extractors emit for simple cells.
func (c *ColumnValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var v Value
		if err := v.UnmarshalJSON(data); err != nil {
			return err
		}
		*c = ColumnValue{Raw: v.String(), Value: v}
		return nil
	}

	var aux struct {
		Raw   Value `json:"raw"`
		Value Value `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = ColumnValue{Raw: aux.Raw.String(), Value: aux.Value}
	return nil
}

// Party is a customer or vendor. VendorNumber is only used for vendors.
type Party struct {
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	TaxID        string `json:"taxId,omitempty"`
	VendorNumber string `json:"vendorNumber,omitempty"`
}

// UnmarshalJSON tolerates numbers and nulls where strings are expected
func (p *Party) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name         Value `json:"name"`
		Address      Value `json:"address"`
		Email        Value `json:"email"`
		Phone        Value `json:"phone"`
		TaxID        Value `json:"taxId"`
		VendorNumber Value `json:"vendorNumber"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decoding party: %w", err)
	}
	*p = Party{
		Name:         aux.Name.String(),
		Address:      aux.Address.String(),
		Email:        aux.Email.String(),
		Phone:        aux.Phone.String(),
		TaxID:        aux.TaxID.String(),
		VendorNumber: aux.VendorNumber.String(),
	}
	return nil
}

// OrderLine is one row of the order-lines table. Columns holds the dynamic
// representation; the scalar fields are convenience copies some extractors
// also supply.
type OrderLine struct {
	Columns          map[string]ColumnValue `json:"columns,omitempty"`
	ProductName      *ColumnValue           `json:"productName,omitempty"`
	EAN              *ColumnValue           `json:"ean,omitempty"`
	LineNumber       *float64               `json:"lineNumber,omitempty"`
	Description      *string                `json:"description,omitempty"`
	Quantity         *float64               `json:"quantity,omitempty"`
	Unit             string                 `json:"unit,omitempty"`
	UnitPrice        *float64               `json:"unitPrice,omitempty"`
	TotalAmount      *float64               `json:"totalAmount,omitempty"`
	ItemNumber       string                 `json:"itemNumber,omitempty"`
	Brand            string                 `json:"brand,omitempty"`
	VendorItemNumber string                 `json:"vendorItemNumber,omitempty"`
	DiscountPercent  *float64               `json:"discountPercent,omitempty"`

	// keys is the column order as the extractor emitted it
	keys []string
}

// ColumnKeys returns the keys of Columns in source order. Keys added without
// a known position follow in lexical order.
func (l OrderLine) ColumnKeys() []string {
	out := make([]string, 0, len(l.Columns))
	seen := make(map[string]bool, len(l.Columns))
	for _, k := range l.keys {
		if _, ok := l.Columns[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	if len(out) == len(l.Columns) {
		return out
	}
	rest := make([]string, 0, len(l.Columns)-len(out))
	for k := range l.Columns {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Cell returns the display text of a column and whether the column exists
func (l OrderLine) Cell(key string) (string, bool) {
	cv, ok := l.Columns[key]
	if !ok {
		return "", false
	}
	return cv.Display(), true
}

// Label is the line's description, or its product name when the line has no
// description at all. An empty description is kept as is.
func (l OrderLine) Label() string {
	if l.Description != nil {
		return *l.Description
	}
	if l.ProductName != nil {
		return l.ProductName.Value.String()
	}
	return ""
}

// withColumn returns a copy of the line with one column replaced. The column
// map and key order are copied, never written in place.
func (l OrderLine) withColumn(key string, cv ColumnValue) OrderLine {
	columns := make(map[string]ColumnValue, len(l.Columns)+1)
	for k, v := range l.Columns {
		columns[k] = v
	}
	_, existed := columns[key]
	columns[key] = cv

	keys := l.ColumnKeys()
	if !existed {
		keys = append(keys, key)
	}
	l.Columns = columns
	l.keys = keys
	return l
}

// NewOrderLine builds a line from columns given in display order
func NewOrderLine(keys []string, columns map[string]ColumnValue) OrderLine {
	return OrderLine{Columns: columns, keys: append([]string(nil), keys...)}
}

// MarshalJSON writes the columns in source order
func (l OrderLine) MarshalJSON() ([]byte, error) {
	type plain OrderLine
	aux := struct {
		Columns *orderedColumns `json:"columns,omitempty"`
		plain
	}{plain: plain(l)}
	if l.Columns != nil {
		aux.Columns = &orderedColumns{keys: l.ColumnKeys(), values: l.Columns}
	}
	return json.Marshal(aux)
}

// UnmarshalJSON records column order and accepts numbers sent as text
func (l *OrderLine) UnmarshalJSON(data []byte) error {
	var aux struct {
		Columns          json.RawMessage `json:"columns"`
		ProductName      *ColumnValue    `json:"productName"`
		EAN              *ColumnValue    `json:"ean"`
		LineNumber       *Value          `json:"lineNumber"`
		Description      *Value          `json:"description"`
		Quantity         *Value          `json:"quantity"`
		Unit             Value           `json:"unit"`
		UnitPrice        *Value          `json:"unitPrice"`
		TotalAmount      *Value          `json:"totalAmount"`
		ItemNumber       Value           `json:"itemNumber"`
		Brand            Value           `json:"brand"`
		VendorItemNumber Value           `json:"vendorItemNumber"`
		DiscountPercent  *Value          `json:"discountPercent"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decoding order line: %w", err)
	}

	columns, keys, err := decodeColumns(aux.Columns)
	if err != nil {
		return err
	}

	*l = OrderLine{
		Columns:          columns,
		ProductName:      aux.ProductName,
		EAN:              aux.EAN,
		LineNumber:       optionalNumber(aux.LineNumber),
		Description:      optionalText(aux.Description),
		Quantity:         optionalNumber(aux.Quantity),
		Unit:             aux.Unit.String(),
		UnitPrice:        optionalNumber(aux.UnitPrice),
		TotalAmount:      optionalNumber(aux.TotalAmount),
		ItemNumber:       aux.ItemNumber.String(),
		Brand:            aux.Brand.String(),
		VendorItemNumber: aux.VendorItemNumber.String(),
		DiscountPercent:  optionalNumber(aux.DiscountPercent),
		keys:             keys,
	}
	return nil
}

// decodeColumns decodes a JSON object of cells, keeping key order
func decodeColumns(data json.RawMessage) (map[string]ColumnValue, []string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decoding columns: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("decoding columns: expected object, got %v", tok)
	}

	columns := make(map[string]ColumnValue)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decoding column key: %w", err)
		}
		key, _ := tok.(string)
		var cv ColumnValue
		if err := dec.Decode(&cv); err != nil {
			return nil, nil, fmt.Errorf("decoding column %q: %w", key, err)
		}
		if _, dup := columns[key]; !dup {
			keys = append(keys, key)
		}
		columns[key] = cv
	}
	return columns, keys, nil
}

type orderedColumns struct {
	keys   []string
	values map[string]ColumnValue
}

func (o orderedColumns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding column %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is a normalized commercial document (invoice, order or quote).
// Operations in this package never modify a Document in place; edits return
// a new value.
type Document struct {
	DocumentType    DocumentType `json:"documentType,omitempty"`
	DocumentNumber  string       `json:"documentNumber"`
	DocumentDate    string       `json:"documentDate"`
	DueDate         string       `json:"dueDate,omitempty"`
	PagesProcessed  *float64     `json:"pagesProcessed,omitempty"`
	SheetsProcessed *float64     `json:"sheetsProcessed,omitempty"`
	TotalOrderLines *float64     `json:"totalOrderLines,omitempty"`
	Customer        Party        `json:"customer"`
	Vendor          Party        `json:"vendor"`
	DeliveryAddress string       `json:"deliveryAddress,omitempty"`
	Purchaser       string       `json:"purchaser,omitempty"`
	PaymentTerms    string       `json:"paymentTerms,omitempty"`
	TableColumns    []ColumnSpec `json:"tableColumns,omitempty"`
	OrderLines      []OrderLine  `json:"orderLines"`
	Subtotal        float64      `json:"subtotal"`
	TaxAmount       *float64     `json:"taxAmount,omitempty"`
	TotalAmount     float64      `json:"totalAmount"`
	Currency        string       `json:"currency"`
	Notes           string       `json:"notes,omitempty"`
}

// UsesDynamicColumns reports whether the declared TableColumns schema is
// authoritative: at least one column is declared and every line carries a
// columns map.
func (d Document) UsesDynamicColumns() bool {
	if len(d.TableColumns) == 0 || len(d.OrderLines) == 0 {
		return false
	}
	for _, line := range d.OrderLines {
		if line.Columns == nil {
			return false
		}
	}
	return true
}

// MarshalJSON always emits orderLines as an array
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	p := plain(d)
	if p.OrderLines == nil {
		p.OrderLines = []OrderLine{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes a document from an extractor. It accepts the legacy
// invoiceNumber/invoiceDate names and numbers sent as text, so a sparsely
// typed extraction still decodes.
func (d *Document) UnmarshalJSON(data []byte) error {
	var aux struct {
		DocumentType    Value        `json:"documentType"`
		DocumentNumber  *Value       `json:"documentNumber"`
		InvoiceNumber   Value        `json:"invoiceNumber"`
		DocumentDate    *Value       `json:"documentDate"`
		InvoiceDate     Value        `json:"invoiceDate"`
		DueDate         Value        `json:"dueDate"`
		PagesProcessed  *Value       `json:"pagesProcessed"`
		SheetsProcessed *Value       `json:"sheetsProcessed"`
		TotalOrderLines *Value       `json:"totalOrderLines"`
		Customer        Party        `json:"customer"`
		Vendor          Party        `json:"vendor"`
		DeliveryAddress Value        `json:"deliveryAddress"`
		Purchaser       Value        `json:"purchaser"`
		PaymentTerms    Value        `json:"paymentTerms"`
		TableColumns    []ColumnSpec `json:"tableColumns"`
		OrderLines      []OrderLine  `json:"orderLines"`
		Subtotal        Value        `json:"subtotal"`
		TaxAmount       *Value       `json:"taxAmount"`
		TotalAmount     Value        `json:"totalAmount"`
		Currency        Value        `json:"currency"`
		Notes           Value        `json:"notes"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	number := aux.InvoiceNumber.String()
	if aux.DocumentNumber != nil && !aux.DocumentNumber.IsNull() {
		number = aux.DocumentNumber.String()
	}
	date := aux.InvoiceDate.String()
	if aux.DocumentDate != nil && !aux.DocumentDate.IsNull() {
		date = aux.DocumentDate.String()
	}

	*d = Document{
		DocumentType:    DocumentType(aux.DocumentType.String()),
		DocumentNumber:  number,
		DocumentDate:    date,
		DueDate:         aux.DueDate.String(),
		PagesProcessed:  optionalNumber(aux.PagesProcessed),
		SheetsProcessed: optionalNumber(aux.SheetsProcessed),
		TotalOrderLines: optionalNumber(aux.TotalOrderLines),
		Customer:        aux.Customer,
		Vendor:          aux.Vendor,
		DeliveryAddress: aux.DeliveryAddress.String(),
		Purchaser:       aux.Purchaser.String(),
		PaymentTerms:    aux.PaymentTerms.String(),
		TableColumns:    aux.TableColumns,
		OrderLines:      aux.OrderLines,
		Subtotal:        ParseNumeric(aux.Subtotal),
		TaxAmount:       optionalNumber(aux.TaxAmount),
		TotalAmount:     ParseNumeric(aux.TotalAmount),
		Currency:        aux.Currency.String(),
		Notes:           aux.Notes.String(),
	}
	return nil
}

func optionalNumber(v *Value) *float64 {
	if v == nil || v.IsNull() {
		return nil
	}
	f := ParseNumeric(*v)
	return &f
}

func optionalText(v *Value) *string {
	if v == nil || v.IsNull() {
		return nil
	}
	return String(v.String())
}

// String returns a pointer to s, for populating optional text fields
func String(s string) *string {
	return &s
}

// Float returns a pointer to f, for populating optional numeric fields
func Float(f float64) *float64 {
	return &f
}
