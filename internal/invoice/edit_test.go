package invoice

import (
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func mapIdentity(m map[string]ColumnValue) uintptr {
	return reflect.ValueOf(m).Pointer()
}

var _ = Describe("Field editor", func() {
	var (
		doc      Document
		snapshot Document
	)

	BeforeEach(func() {
		doc = sampleDocument()
		snapshot = sampleDocument()
	})

	Describe("SetPath", func() {
		It("parses known numeric fields", func() {
			out := SetPath(doc, "subtotal", "kr 1 200,50")
			Expect(out.Subtotal).To(Equal(1200.5))
		})

		It("sets optional numeric fields", func() {
			out := SetPath(doc, "taxAmount", "300")
			Expect(out.TaxAmount).To(HaveValue(Equal(300.0)))
			Expect(doc.TaxAmount).To(HaveValue(Equal(9500.0)))
		})

		It("stores text fields unchanged", func() {
			out := SetPath(doc, "notes", "  deliver 1,5 pallets ")
			Expect(out.Notes).To(Equal("  deliver 1,5 pallets "))
		})

		It("accepts the legacy document number name", func() {
			out := SetPath(doc, "invoiceNumber", "INV-2")
			Expect(out.DocumentNumber).To(Equal("INV-2"))
		})

		It("sets party fields", func() {
			out := SetPath(doc, "customer.email", "orders@acme.no")
			Expect(out.Customer.Email).To(Equal("orders@acme.no"))
			Expect(out.Vendor).To(Equal(doc.Vendor))
		})

		It("sets the vendor number only on the vendor", func() {
			Expect(SetPath(doc, "vendor.vendorNumber", "V-9").Vendor.VendorNumber).To(Equal("V-9"))
			Expect(SetPath(doc, "customer.vendorNumber", "V-9")).To(Equal(doc))
		})

		It("sets order line scalar fields", func() {
			out := SetPath(doc, "orderLines.1.quantity", "4,5")
			Expect(out.OrderLines[1].Quantity).To(HaveValue(Equal(4.5)))
			Expect(doc.OrderLines[1].Quantity).To(BeNil())
		})

		It("sets a cell through a columns path", func() {
			out := SetPath(doc, "orderLines.0.columns.quantity", "7")
			Expect(out.OrderLines[0].Columns["quantity"]).To(Equal(ColumnValue{Raw: "7", Value: Number(7)}))
		})

		It("sets only the raw text of a cell", func() {
			out := SetPath(doc, "orderLines.0.columns.quantity.raw", "seven")
			Expect(out.OrderLines[0].Columns["quantity"]).To(Equal(ColumnValue{Raw: "seven", Value: Number(5)}))
		})

		It("sets product name and EAN pairs", func() {
			out := SetPath(doc, "orderLines.0.ean", "7038010000000")
			Expect(out.OrderLines[0].EAN).To(HaveValue(Equal(ColumnValue{Raw: "7038010000000", Value: Text("7038010000000")})))
		})

		DescribeTable("leaves the document unchanged for unresolvable paths",
			func(path string) {
				Expect(SetPath(doc, path, "x")).To(Equal(snapshot))
			},
			Entry("unknown field", "unknownField"),
			Entry("unknown party field", "customer.shoeSize"),
			Entry("too deep", "subtotal.amount"),
			Entry("line index out of range", "orderLines.9.quantity"),
			Entry("negative line index", "orderLines.-1.quantity"),
			Entry("non-numeric line index", "orderLines.first.quantity"),
			Entry("missing line field", "orderLines.0"),
			Entry("bad cell part", "orderLines.0.columns.qty.other"),
			Entry("empty path", ""),
		)

		It("does not mutate the input", func() {
			SetPath(doc, "orderLines.0.columns.quantity", "9")
			SetPath(doc, "customer.name", "Other")
			SetPath(doc, "subtotal", "1")
			Expect(doc).To(Equal(snapshot))
		})

		It("shares untouched lines and columns", func() {
			out := SetPath(doc, "orderLines.0.columns.quantity", "9")
			Expect(mapIdentity(out.OrderLines[1].Columns)).To(Equal(mapIdentity(doc.OrderLines[1].Columns)))
			Expect(mapIdentity(out.OrderLines[0].Columns)).NotTo(Equal(mapIdentity(doc.OrderLines[0].Columns)))
			Expect(&out.TableColumns[0]).To(BeIdenticalTo(&doc.TableColumns[0]))
		})

		DescribeTable("re-applying the read value is a no-op",
			func(path, input string) {
				once := SetPath(doc, path, input)
				twice := SetPath(once, path, GetPath(once, path).String())
				Expect(twice).To(Equal(once))
			},
			Entry("numeric field", "subtotal", "1 234,56"),
			Entry("optional numeric field", "taxAmount", "-12,5"),
			Entry("text field", "currency", "EUR"),
			Entry("party field", "vendor.phone", "+47 55 66 77 88"),
			Entry("line field", "orderLines.1.unitPrice", "99,90"),
			Entry("numeric cell", "orderLines.0.columns.unitPrice", "2 600,00"),
			Entry("text cell", "orderLines.0.columns.description", "Chair, black"),
			Entry("empty numeric cell", "orderLines.0.columns.quantity", ""),
		)
	})

	Describe("GetPath", func() {
		It("reads top-level fields", func() {
			Expect(GetPath(doc, "documentNumber")).To(Equal(Text("INV-1001")))
			Expect(GetPath(doc, "totalAmount")).To(Equal(Number(47500)))
		})

		It("reads cells", func() {
			Expect(GetPath(doc, "orderLines.1.columns.description")).To(Equal(Text("Standing Desk")))
			Expect(GetPath(doc, "orderLines.1.columns.unitPrice.raw")).To(Equal(Text("8500.00")))
		})

		It("reads absent optional fields as empty text", func() {
			Expect(GetPath(doc, "dueDate")).To(Equal(Text("")))
			Expect(GetPath(doc, "orderLines.0.quantity")).To(Equal(Text("")))
			Expect(GetPath(doc, "orderLines.0.description")).To(Equal(Text("")))
		})

		It("stores an edited description even when it is empty", func() {
			out := SetPath(doc, "orderLines.0.description", "")
			Expect(out.OrderLines[0].Description).To(HaveValue(BeEmpty()))
			Expect(doc.OrderLines[0].Description).To(BeNil())
		})

		It("reads unresolvable paths as empty text", func() {
			Expect(GetPath(doc, "orderLines.5.columns.x")).To(Equal(Text("")))
			Expect(GetPath(doc, "customer.name.first")).To(Equal(Text("")))
			Expect(GetPath(Document{}, "orderLines.0.columns.qty")).To(Equal(Text("")))
		})
	})

	Describe("SetColumn", func() {
		It("stores numeric columns as parsed numbers", func() {
			out := SetColumn(doc, 1, "quantity", "12")
			Expect(out.OrderLines[1].Columns["quantity"]).To(Equal(ColumnValue{Raw: "12", Value: Number(12)}))
		})

		It("stores text columns unchanged", func() {
			out := SetColumn(doc, 1, "description", "Desk, oak")
			Expect(out.OrderLines[1].Columns["description"]).To(Equal(ColumnValue{Raw: "Desk, oak", Value: Text("Desk, oak")}))
		})

		It("adds new columns after the existing ones", func() {
			out := SetColumn(doc, 0, "discountPct", "5")
			Expect(out.OrderLines[0].ColumnKeys()).To(Equal([]string{
				"lineNumber", "description", "quantity", "unitPrice", "totalAmount", "discountPct",
			}))
			Expect(doc.OrderLines[0].Columns).NotTo(HaveKey("discountPct"))
		})

		It("creates the column map for a line without one", func() {
			doc.OrderLines = append(doc.OrderLines, OrderLine{Description: String("Loose line")})
			snapshot.OrderLines = append(snapshot.OrderLines, OrderLine{Description: String("Loose line")})
			out := SetColumn(doc, 2, "qty", "3")
			Expect(out.OrderLines[2].Columns).To(HaveKeyWithValue("qty", ColumnValue{Raw: "3", Value: Number(3)}))
			Expect(doc).To(Equal(snapshot))
		})

		It("ignores an out-of-range line", func() {
			Expect(SetColumn(doc, 2, "qty", "3")).To(Equal(snapshot))
			Expect(SetColumn(doc, -1, "qty", "3")).To(Equal(snapshot))
		})

		It("copies only the edited branch", func() {
			out := SetColumn(doc, 0, "quantity", "9")
			Expect(doc).To(Equal(snapshot))
			Expect(mapIdentity(out.OrderLines[1].Columns)).To(Equal(mapIdentity(doc.OrderLines[1].Columns)))
			Expect(&out.OrderLines[0]).NotTo(BeIdenticalTo(&doc.OrderLines[0]))
		})
	})
})
