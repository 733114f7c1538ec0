package scanning

import (
	"github.com/xuri/excelize/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func workbookBytes() []byte {
	f := excelize.NewFile()
	defer f.Close()

	Expect(f.SetCellValue("Sheet1", "A1", "Varenr")).To(Succeed())
	Expect(f.SetCellValue("Sheet1", "B1", "Antall")).To(Succeed())
	Expect(f.SetCellValue("Sheet1", "A2", "A-100")).To(Succeed())
	Expect(f.SetCellValue("Sheet1", "B2", 12)).To(Succeed())
	_, err := f.NewSheet("Totals")
	Expect(err).NotTo(HaveOccurred())
	Expect(f.SetCellValue("Totals", "A1", "Sum")).To(Succeed())
	Expect(f.SetCellValue("Totals", "B1", 1250.5)).To(Succeed())

	buf, err := f.WriteToBuffer()
	Expect(err).NotTo(HaveOccurred())
	return buf.Bytes()
}

var _ = Describe("spreadsheetText", func() {
	It("renders every sheet as tab-separated rows", func() {
		text, sheets, err := spreadsheetText(workbookBytes(), "order.xlsx")
		Expect(err).NotTo(HaveOccurred())
		Expect(sheets).To(Equal(2))
		Expect(text).To(Equal("## Sheet: Sheet1\nVarenr\tAntall\nA-100\t12\n\n## Sheet: Totals\nSum\t1250.5"))
	})

	It("refuses legacy workbooks", func() {
		_, _, err := spreadsheetText([]byte{0xD0, 0xCF, 0x11, 0xE0}, "old.xls")
		Expect(err).To(MatchError(ErrLegacyWorkbook))
	})

	It("returns an error for data that is not a workbook", func() {
		_, _, err := spreadsheetText([]byte("not a zip"), "broken.xlsx")
		Expect(err).To(HaveOccurred())
	})

	It("is used to prepare spreadsheet uploads", func() {
		c, err := prepareContent(Upload{Data: workbookBytes(), FileName: "order.xlsx"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.images).To(BeEmpty())
		Expect(c.sheets).To(Equal(2))
		Expect(c.text).To(ContainSubstring("A-100\t12"))
	})
})
