package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classify", func() {
	It("recognises a total column", func() {
		Expect(Classify("Total Amount").IsTotal).To(BeTrue())
	})

	It("recognises a Norwegian quantity column", func() {
		Expect(Classify("Antall").IsQuantity).To(BeTrue())
	})

	It("recognises a Norwegian unit price column", func() {
		Expect(Classify("Enhetspris").IsPrice).To(BeTrue())
	})

	It("treats a description column as text", func() {
		Expect(Classify("Beskrivelse").IsNumeric).To(BeFalse())
	})

	It("matches keywords anywhere in the key", func() {
		c := Classify("lineTotalNOK")
		Expect(c.IsTotal).To(BeTrue())
		Expect(c.IsNumeric).To(BeTrue())
	})

	It("marks numeric hint keys as numeric without a class", func() {
		c := Classify("itemNr")
		Expect(c.IsNumeric).To(BeTrue())
		Expect(c.Class()).To(Equal(ClassGeneric))
	})

	DescribeTable("resolving overlapping matches",
		func(key string, expected ColumnClass) {
			Expect(Classify(key).Class()).To(Equal(expected))
		},
		Entry("total wins over price", "Enhetspris", ClassTotal),
		Entry("quantity wins over price", "unitQuantity", ClassQuantity),
		Entry("price alone", "unitPrice", ClassPrice),
		Entry("quantity alone", "qty", ClassQuantity),
		Entry("no match", "description", ClassGeneric),
	)

	It("matches non-ASCII keywords case-insensitively", func() {
		Expect(Classify("BELØP").IsTotal).To(BeTrue())
	})
})
