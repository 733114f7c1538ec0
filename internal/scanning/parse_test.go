package scanning

import (
	"github.com/zombor/invoice-ai/internal/invoice"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseDocumentJSON", func() {
	var (
		jsonInput string
		doc       *invoice.Document
		err       error
	)

	JustBeforeEach(func() {
		doc, err = parseDocumentJSON(jsonInput)
	})

	When("parsing valid JSON", func() {
		BeforeEach(func() {
			jsonInput = sampleResponse
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should trim the document number", func() {
			Expect(doc.DocumentNumber).To(Equal("PO-42"))
		})

		It("should normalize the date", func() {
			Expect(doc.DocumentDate).To(Equal("2024-03-05"))
		})

		It("should upper-case the currency", func() {
			Expect(doc.Currency).To(Equal("NOK"))
		})

		It("should keep the order lines", func() {
			Expect(doc.OrderLines).To(HaveLen(1))
			Expect(doc.OrderLines[0].Columns["qty"].Value).To(Equal(invoice.Number(5)))
		})
	})

	When("parsing JSON with markdown code blocks", func() {
		BeforeEach(func() {
			jsonInput = "```json\n{\"documentNumber\": \"A-1\", \"totalAmount\": 10.50}\n```"
		})

		It("should parse the content", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.DocumentNumber).To(Equal("A-1"))
			Expect(doc.TotalAmount).To(Equal(10.5))
		})

		It("should default the document type", func() {
			Expect(doc.DocumentType).To(Equal(invoice.TypeInvoice))
		})
	})

	When("the response has text around the JSON", func() {
		BeforeEach(func() {
			jsonInput = "Here is the data:\n{\"documentNumber\": \"A-2\"}\nThanks"
		})

		It("should extract the object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.DocumentNumber).To(Equal("A-2"))
		})
	})

	When("the date is not recognised", func() {
		BeforeEach(func() {
			jsonInput = `{"documentDate": "early March", "dueDate": "2024/04/01"}`
		})

		It("should keep it as printed", func() {
			Expect(doc.DocumentDate).To(Equal("early March"))
			Expect(doc.DueDate).To(Equal("2024-04-01"))
		})
	})

	When("there is no JSON object", func() {
		BeforeEach(func() {
			jsonInput = `invalid json`
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("no JSON object")))
		})
	})

	When("the JSON is malformed", func() {
		BeforeEach(func() {
			jsonInput = `{"orderLines": [}`
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("withCounts", func() {
	It("fills in missing counts", func() {
		doc := withCounts(&invoice.Document{OrderLines: make([]invoice.OrderLine, 3)}, content{pages: 2})
		Expect(doc.PagesProcessed).To(HaveValue(Equal(2.0)))
		Expect(doc.SheetsProcessed).To(BeNil())
		Expect(doc.TotalOrderLines).To(HaveValue(Equal(3.0)))
	})

	It("keeps counts reported by the model", func() {
		doc := withCounts(&invoice.Document{SheetsProcessed: invoice.Float(5)}, content{sheets: 2})
		Expect(doc.SheetsProcessed).To(HaveValue(Equal(5.0)))
	})
})
