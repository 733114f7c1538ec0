package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Formatter", func() {
	var f Formatter

	BeforeEach(func() {
		f = NewFormatter("en-US")
	})

	Describe("Format", func() {
		DescribeTable("missing input renders the placeholder",
			func(value any, kind ColumnType) {
				Expect(f.Format(value, kind, "NOK")).To(Equal(Placeholder))
			},
			Entry("nil currency", nil, ColumnCurrency),
			Entry("empty text number", "", ColumnNumber),
			Entry("null Value percentage", Value{}, ColumnPercentage),
			Entry("nil pointer text", (*float64)(nil), ColumnText),
		)

		It("renders currency with grouping, two decimals and the code", func() {
			Expect(f.Format(1234.5, ColumnCurrency, "NOK")).To(Equal("NOK 1,234.50"))
		})

		It("normalizes text before rendering currency", func() {
			Expect(f.Format("1234,5", ColumnCurrency, "usd")).To(Equal("USD 1,234.50"))
		})

		It("renders percentages with one decimal", func() {
			Expect(f.Format("12,345", ColumnPercentage, "")).To(Equal("12.3%"))
			Expect(f.Format(25, ColumnPercentage, "")).To(Equal("25.0%"))
		})

		It("rounds percentages from the stored binary value", func() {
			Expect(f.FormatPercentage(1.45)).To(Equal("1.4%"))
			Expect(f.FormatPercentage(0.25)).To(Equal("0.3%"))
			Expect(f.FormatPercentage(-0.25)).To(Equal("-0.3%"))
		})

		It("renders numbers with grouping", func() {
			Expect(f.Format(1234567, ColumnNumber, "")).To(Equal("1,234,567"))
			Expect(f.Format(Number(2.5), ColumnNumber, "")).To(Equal("2.5"))
		})

		It("renders text unchanged", func() {
			Expect(f.Format(" 1,5 kg ", ColumnText, "")).To(Equal(" 1,5 kg "))
			Expect(f.Format(Text("Widget"), ColumnText, "")).To(Equal("Widget"))
		})
	})

	Describe("FormatCurrency", func() {
		It("falls back for an unrecognised currency code", func() {
			Expect(f.FormatCurrency(1234.5, "BOGUS")).To(Equal("BOGUS 1234.50"))
		})

		It("rounds the fallback from the stored binary value", func() {
			Expect(f.FormatCurrency(2.675, "XYZ")).To(Equal("XYZ 2.67"))
			Expect(f.FormatCurrency(1.005, "XYZ")).To(Equal("XYZ 1.00"))
		})

		It("defaults an empty code to NOK", func() {
			Expect(f.FormatCurrency(10, "")).To(Equal("NOK 10.00"))
		})

		It("renders an absent amount as the placeholder", func() {
			Expect(f.FormatOptionalCurrency(nil, "NOK")).To(Equal(Placeholder))
		})

		When("the locale writes the currency after the amount", func() {
			BeforeEach(func() {
				f = NewFormatter("nb-NO")
			})

			It("suffixes the code and keeps two decimals", func() {
				out := f.FormatCurrency(1234.5, "NOK")
				Expect(out).To(HaveSuffix(" NOK"))
				Expect(out).To(MatchRegexp(`^1\D?234[.,]50 NOK$`))
			})
		})
	})

	It("falls back to the default locale for an invalid tag", func() {
		Expect(NewFormatter("not a locale").Locale()).To(Equal("nb-NO"))
	})
})
