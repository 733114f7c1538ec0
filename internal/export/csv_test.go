package export

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/invoice-ai/internal/invoice"
)

func lines(rows ...string) string {
	return strings.Join(rows, "\n")
}

var _ = Describe("CSV", func() {
	Describe("DocumentCSV", func() {
		It("renders every section of a dynamic-column document", func() {
			Expect(DocumentCSV(dynamicDocument())).To(Equal(lines(
				"Document Information",
				"Document Type,order",
				"Document Number,PO-1",
				"Date,2024-03-01",
				"Purchaser,Kari",
				"",
				"Customer Information",
				`Name,"Acme, Inc."`,
				`Address,"Street 1, 0150 Oslo"`,
				"Email,a@acme.no",
				"",
				"Vendor Information",
				"Name,Supplier AS",
				"Phone,+47 1",
				"Vendor Number,V-9",
				"",
				"Delivery Address",
				`Address,"Dock 4, Oslo"`,
				"",
				"Order Lines",
				`Description,Qty,"Price ""NOK"""`,
				"Chair,2,1200.5",
				`"Desk, oak",1,`,
				"",
				"Totals",
				"Subtotal,2401",
				"Tax Amount,600.25",
				"Total Amount,3001.25",
				"Currency,NOK",
				"",
				"Notes",
				`"Ring ""før"" levering"`,
			)))
		})

		It("falls back to the six-column schema", func() {
			out := DocumentCSV(fixedDocument())
			Expect(out).To(ContainSubstring(lines(
				"Order Lines",
				"Line Number,Description,Quantity,Unit,Unit Price,Total Amount",
				"1,Widget,3,pcs,9.5,28.5",
				",Bolt,,,,",
				"",
				"Totals",
			)))
		})

		It("renders an empty document with defaults and no trailing newline", func() {
			Expect(DocumentCSV(invoice.Document{})).To(Equal(lines(
				"Document Information",
				"Document Type,invoice",
				"Document Number,",
				"Date,",
				"",
				"Customer Information",
				"Name,",
				"",
				"Vendor Information",
				"Name,",
				"",
				"Order Lines",
				"Line Number,Description,Quantity,Unit,Unit Price,Total Amount",
				"",
				"Totals",
				"Subtotal,0",
				"Total Amount,0",
				"Currency,",
			)))
		})

		It("writes the document totals as they are", func() {
			doc := dynamicDocument()
			doc.Subtotal = 1
			doc.TotalAmount = 2
			doc.TaxAmount = nil
			out := DocumentCSV(doc)
			Expect(out).To(ContainSubstring("Subtotal,1\nTotal Amount,2\n"))
			Expect(out).NotTo(ContainSubstring("Tax Amount"))
		})
	})

	Describe("OrderLinesCSV", func() {
		It("renders a header line followed by the data lines", func() {
			doc := invoice.Document{
				TableColumns: []invoice.ColumnSpec{{Key: "qty", Header: "Qty", Type: invoice.ColumnNumber, Align: invoice.AlignRight}},
				OrderLines: []invoice.OrderLine{
					invoice.NewOrderLine([]string{"qty"}, map[string]invoice.ColumnValue{
						"qty": {Raw: "5", Value: invoice.Number(5)},
					}),
				},
			}
			Expect(OrderLinesCSV(doc)).To(Equal("Qty\n5"))
		})

		It("follows the declared schema", func() {
			Expect(OrderLinesCSV(dynamicDocument())).To(Equal(lines(
				`Description,Qty,"Price ""NOK"""`,
				"Chair,2,1200.5",
				`"Desk, oak",1,`,
			)))
		})

		It("falls back to the eight-column schema", func() {
			Expect(OrderLinesCSV(fixedDocument())).To(Equal(lines(
				"Line Number,Product Name,EAN,Description,Quantity,Unit,Unit Price,Total Amount",
				"1,Widget One,7038010000000,Widget,3,pcs,9.5,28.5",
				",Bolt,,,,,,",
			)))
		})

		It("uses the fixed schema when a line lacks columns", func() {
			doc := dynamicDocument()
			doc.OrderLines = append(doc.OrderLines, invoice.OrderLine{Description: invoice.String("Loose")})
			Expect(OrderLinesCSV(doc)).To(HavePrefix("Line Number,Product Name,EAN"))
		})
	})

	DescribeTable("escape",
		func(in, out string) {
			Expect(escape(in)).To(Equal(out))
		},
		Entry("plain", "Widget", "Widget"),
		Entry("comma", "a,b", `"a,b"`),
		Entry("quote", `5" pipe`, `"5"" pipe"`),
		Entry("newline", "a\nb", "\"a\nb\""),
		Entry("leading space is kept bare", " a", " a"),
		Entry("empty", "", ""),
	)
})
