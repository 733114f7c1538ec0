package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/zombor/invoice-ai/internal/invoice"
)

const (
	pageMargin   = 15.0
	panelHeight  = 8.0
	rowHeight    = 7.0
	totalsWidth  = 80.0
	totalsHeight = 30.0
	fontFamily   = "Helvetica"
)

type rgb struct{ r, g, b int }

var (
	black     = rgb{0, 0, 0}
	white     = rgb{255, 255, 255}
	titleGray = rgb{51, 51, 51}
	noteGray  = rgb{100, 100, 100}
	footGray  = rgb{150, 150, 150}
	ruleGray  = rgb{200, 200, 200}
	accent    = rgb{0, 100, 0}
)

var fixedColumns = []struct {
	header string
	width  float64
}{
	{"#", 15}, {"Description", 70}, {"Qty", 20}, {"Unit", 20}, {"Price", 30}, {"Total", 30},
}

var titles = map[invoice.DocumentType]string{
	invoice.TypeOrder:   "ORDER",
	invoice.TypeInvoice: "INVOICE",
	invoice.TypeQuote:   "QUOTE",
}

// core fonts cannot encode these separators, which x/text emits for some
// locales
var spaceReplacer = strings.NewReplacer("\u202f", " ", "\u2009", " ")

// PDF renders the printable layout: A4 portrait, paginated whenever the next
// block would overflow the page.
func (e *Exporter) PDF(doc invoice.Document, now time.Time) (Artifact, error) {
	pdf := e.layout(doc, now)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Artifact{}, fmt.Errorf("writing pdf: %w", err)
	}
	return Artifact{
		Data:     buf.Bytes(),
		Filename: filename("invoice", doc, now, "pdf"),
		MIMEType: MIMEPDF,
	}, nil
}

func (e *Exporter) layout(doc invoice.Document, now time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCreationDate(now)
	pdf.SetCreator("Invoice AI", false)
	pdf.SetTitle(strings.TrimSpace(titleFor(doc.DocumentType)+" "+doc.DocumentNumber), true)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	l := &pdfLayout{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		formatter: e.formatter,
		width:     w,
		height:    h,
		y:         pageMargin,
	}

	l.title(doc)
	l.info(doc)
	l.parties(doc)
	l.delivery(doc)
	l.orderLines(doc)
	l.totals(doc)
	l.notes(doc)
	l.footer(now)
	return pdf
}

func titleFor(t invoice.DocumentType) string {
	if title, ok := titles[t]; ok {
		return title
	}
	return "INVOICE / ORDER"
}

// pdfLayout tracks the vertical write position while composing a document
type pdfLayout struct {
	pdf       *gofpdf.Fpdf
	tr        func(string) string
	formatter invoice.Formatter
	width     float64
	height    float64
	y         float64
}

// ensure starts a new page when space mm would not fit above the bottom margin
func (l *pdfLayout) ensure(space float64) {
	if l.y+space > l.height-pageMargin {
		l.pdf.AddPage()
		l.y = pageMargin
	}
}

func (l *pdfLayout) contentWidth() float64 {
	return l.width - 2*pageMargin
}

// text writes s with its baseline at (x, y) and returns y advanced by one
// line of the given font size
func (l *pdfLayout) text(s string, x, y, size float64, style string, c rgb) float64 {
	l.setFont(size, style, c)
	l.pdf.Text(x, y, l.encode(s))
	return y + size*0.4
}

// textRight is text aligned so it ends at x
func (l *pdfLayout) textRight(s string, x, y, size float64, style string, c rgb) {
	l.setFont(size, style, c)
	encoded := l.encode(s)
	l.pdf.Text(x-l.pdf.GetStringWidth(encoded), y, encoded)
}

func (l *pdfLayout) setFont(size float64, style string, c rgb) {
	l.pdf.SetFont(fontFamily, style, size)
	l.pdf.SetTextColor(c.r, c.g, c.b)
}

func (l *pdfLayout) encode(s string) string {
	return l.tr(spaceReplacer.Replace(s))
}

func (l *pdfLayout) fill(c rgb, x, y, w, h float64) {
	l.pdf.SetFillColor(c.r, c.g, c.b)
	l.pdf.Rect(x, y, w, h, "F")
}

// rule draws a light full-width separator and moves below it
func (l *pdfLayout) rule() {
	l.pdf.SetDrawColor(ruleGray.r, ruleGray.g, ruleGray.b)
	l.pdf.Line(pageMargin, l.y, l.width-pageMargin, l.y)
	l.y += 5
}

func (l *pdfLayout) panelHeader(label string, x, w float64) {
	l.fill(rgb{240, 240, 240}, x, l.y, w, panelHeight)
	l.text(label, x+3, l.y+5.5, 9, "B", black)
}

func (l *pdfLayout) title(doc invoice.Document) {
	l.y = l.text(titleFor(doc.DocumentType), pageMargin, l.y, 20, "B", titleGray)
	l.y += 5
}

func (l *pdfLayout) info(doc invoice.Document) {
	l.ensure(25)
	l.fill(rgb{245, 245, 245}, pageMargin, l.y, l.contentWidth(), 25)
	mid := l.width / 2
	left := pageMargin + 5

	l.y += 5
	l.text("Document #: "+doc.DocumentNumber, left, l.y, 10, "B", black)
	l.text("Date: "+doc.DocumentDate, mid, l.y, 10, "", black)
	l.y += 5

	if doc.DueDate != "" {
		l.text("Due Date: "+doc.DueDate, left, l.y, 10, "", black)
	}
	l.text("Currency: "+doc.Currency, mid, l.y, 10, "", black)
	l.y += 5

	if doc.Purchaser != "" {
		l.text("Purchaser: "+doc.Purchaser, left, l.y, 10, "", black)
	}
	l.y += 15
}

func (l *pdfLayout) parties(doc invoice.Document) {
	colWidth := (l.width - 3*pageMargin) / 2
	vendorX := pageMargin + colWidth + pageMargin

	customer := partyLines(doc.Customer, false)
	vendor := partyLines(doc.Vendor, true)
	l.ensure(12 + partyHeight(max(len(customer), len(vendor))) + 10)

	l.panelHeader("CUSTOMER", pageMargin, colWidth)
	l.panelHeader("VENDOR", vendorX, colWidth)
	start := l.y + 12

	customerEnd := l.partyBlock(doc.Customer.Name, customer, pageMargin, start)
	vendorEnd := l.partyBlock(doc.Vendor.Name, vendor, vendorX, start)
	l.y = max(customerEnd, vendorEnd) + 10
}

// partyLines lists the detail lines printed under a party's name
func partyLines(p invoice.Party, vendor bool) []string {
	var lines []string
	if p.Address != "" {
		lines = append(lines, strings.Split(p.Address, "\n")...)
	}
	if p.Email != "" {
		lines = append(lines, p.Email)
	}
	if vendor {
		if p.VendorNumber != "" {
			lines = append(lines, "Vendor #: "+p.VendorNumber)
		}
		return lines
	}
	if p.Phone != "" {
		lines = append(lines, p.Phone)
	}
	if p.TaxID != "" {
		lines = append(lines, "Tax ID: "+p.TaxID)
	}
	return lines
}

func partyHeight(detailLines int) float64 {
	return 6 + float64(detailLines)*4.6
}

func (l *pdfLayout) partyBlock(name string, details []string, x, y float64) float64 {
	y = l.text(name, x, y, 10, "B", black)
	y += 2
	for _, line := range details {
		y = l.text(line, x, y, 9, "", black)
		y++
	}
	return y
}

func (l *pdfLayout) delivery(doc invoice.Document) {
	if doc.DeliveryAddress == "" {
		return
	}
	lines := strings.Split(doc.DeliveryAddress, "\n")
	l.ensure(12 + float64(len(lines))*4.6 + 5)

	l.panelHeader("DELIVERY ADDRESS", pageMargin, l.contentWidth())
	l.y += 12
	for _, line := range lines {
		l.y = l.text(line, pageMargin, l.y, 9, "", black)
		l.y++
	}
	l.y += 5
}

func (l *pdfLayout) orderLines(doc invoice.Document) {
	// heading, table header and the first row stay together
	l.ensure(5 + 4.8 + 5 + 10 + rowHeight)
	l.rule()
	l.y = l.text("ORDER LINES", pageMargin, l.y, 12, "B", black)
	l.y += 5

	if doc.UsesDynamicColumns() {
		l.dynamicTable(doc)
	} else {
		l.fixedTable(doc)
	}
	l.y += 5
}

func (l *pdfLayout) tableHeader(headers []string, offsets []float64) {
	l.fill(titleGray, pageMargin, l.y, l.contentWidth(), panelHeight)
	for i, h := range headers {
		l.text(h, pageMargin+offsets[i]+2, l.y+5.5, 8, "B", white)
	}
	l.y += 10
}

func (l *pdfLayout) tableRow(index int, cells []string, offsets []float64) {
	l.ensure(rowHeight + 1)
	if index%2 == 0 {
		l.fill(rgb{250, 250, 250}, pageMargin, l.y, l.contentWidth(), rowHeight)
	}
	for i, c := range cells {
		l.text(c, pageMargin+offsets[i]+2, l.y+5, 8, "", black)
	}
	l.y += rowHeight
}

func (l *pdfLayout) dynamicTable(doc invoice.Document) {
	colWidth := l.contentWidth() / float64(len(doc.TableColumns))
	headers := make([]string, len(doc.TableColumns))
	offsets := make([]float64, len(doc.TableColumns))
	for i, col := range doc.TableColumns {
		headers[i] = truncate(col.Header, 15, 12, "...")
		offsets[i] = float64(i) * colWidth
	}
	l.tableHeader(headers, offsets)

	for i, line := range doc.OrderLines {
		cells := make([]string, len(doc.TableColumns))
		for j, col := range doc.TableColumns {
			v, ok := line.Cell(col.Key)
			if !ok {
				v = invoice.Placeholder
			}
			cells[j] = truncate(v, 20, 17, "...")
		}
		l.tableRow(i, cells, offsets)
	}
}

func (l *pdfLayout) fixedTable(doc invoice.Document) {
	headers := make([]string, len(fixedColumns))
	offsets := make([]float64, len(fixedColumns))
	x := 0.0
	for i, col := range fixedColumns {
		headers[i] = col.header
		offsets[i] = x
		x += col.width
	}
	l.tableHeader(headers, offsets)

	for i, line := range doc.OrderLines {
		lineNumber := strconv.Itoa(i + 1)
		if line.LineNumber != nil {
			lineNumber = number(*line.LineNumber)
		}
		description := line.Label()
		quantity := invoice.Placeholder
		if line.Quantity != nil {
			quantity = number(*line.Quantity)
		}
		unit := line.Unit
		if unit == "" {
			unit = invoice.Placeholder
		}

		l.tableRow(i, []string{
			lineNumber,
			truncate(description, 40, 40, ""),
			quantity,
			unit,
			l.amount(line.UnitPrice),
			l.amount(line.TotalAmount),
		}, offsets)
	}
}

func (l *pdfLayout) amount(v *float64) string {
	if v == nil {
		return invoice.Placeholder
	}
	return l.formatter.FormatAmount(*v)
}

func (l *pdfLayout) totals(doc invoice.Document) {
	l.ensure(totalsHeight + 5)
	l.rule()

	x := l.width - pageMargin - totalsWidth
	right := x + totalsWidth - 5
	l.fill(rgb{245, 245, 245}, x, l.y, totalsWidth, totalsHeight)

	l.y += 6
	l.text("Subtotal:", x+5, l.y, 9, "", black)
	l.textRight(l.formatter.FormatCurrency(doc.Subtotal, doc.Currency), right, l.y, 9, "", black)
	l.y += 6

	if doc.TaxAmount != nil {
		l.text("Tax:", x+5, l.y, 9, "", black)
		l.textRight(l.formatter.FormatCurrency(*doc.TaxAmount, doc.Currency), right, l.y, 9, "", black)
		l.y += 6
	}

	l.pdf.SetDrawColor(noteGray.r, noteGray.g, noteGray.b)
	l.pdf.Line(x+5, l.y, right, l.y)
	l.y += 6

	l.text("TOTAL:", x+5, l.y, 11, "B", black)
	l.textRight(l.formatter.FormatCurrency(doc.TotalAmount, doc.Currency), right, l.y, 11, "B", accent)
}

func (l *pdfLayout) notes(doc invoice.Document) {
	if doc.Notes == "" {
		return
	}
	l.y += 15
	l.ensure(20)
	l.y = l.text("Notes:", pageMargin, l.y, 10, "B", black)
	l.y += 3

	l.setFont(9, "", noteGray)
	for _, line := range l.wrap(l.encode(doc.Notes), l.contentWidth()) {
		l.ensure(4)
		l.setFont(9, "", noteGray)
		l.pdf.Text(pageMargin, l.y, line)
		l.y += 4
	}
}

// wrap breaks encoded text into lines no wider than width at the current font
func (l *pdfLayout) wrap(s string, width float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if l.pdf.GetStringWidth(candidate) > width {
				lines = append(lines, current)
				current = w
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}

func (l *pdfLayout) footer(now time.Time) {
	l.setFont(8, "", footGray)
	l.pdf.Text(pageMargin, l.height-10, l.encode("Generated on "+now.Format("02.01.2006")+" by Invoice AI"))
}

// truncate cuts s to keep runes followed by suffix when it is longer than limit
func truncate(s string, limit, keep int, suffix string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:keep]) + suffix
}
