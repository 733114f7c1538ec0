package records

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newRecord := func(id string, created time.Time) *Record {
		return &Record{
			ID:          id,
			Data:        sampleDocument(),
			FileName:    id + ".pdf",
			ContentType: "application/pdf",
			StoredFile:  id + "_document.pdf",
			CreatedAt:   created,
			UpdatedAt:   created,
		}
	}

	Describe("SaveRecord and GetRecord", func() {
		It("round-trips the record including the document", func() {
			record := newRecord("a", testNow)
			Expect(db.SaveRecord(record)).To(Succeed())

			found, err := db.GetRecord("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.FileName).To(Equal("a.pdf"))
			Expect(found.CreatedAt.Equal(testNow)).To(BeTrue())
			Expect(found.Data).To(Equal(record.Data))
			Expect(found.Data.OrderLines[1].ColumnKeys()).To(Equal([]string{"description", "quantity", "unitPrice"}))
		})

		It("replaces an existing record", func() {
			record := newRecord("a", testNow)
			Expect(db.SaveRecord(record)).To(Succeed())
			record.FileName = "renamed.pdf"
			Expect(db.SaveRecord(record)).To(Succeed())

			found, err := db.GetRecord("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.FileName).To(Equal("renamed.pdf"))
		})
	})

	Describe("GetRecord", func() {
		It("returns ErrNotFound for an unknown ID", func() {
			_, err := db.GetRecord("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListRecords", func() {
		When("the database is empty", func() {
			It("returns an empty list", func() {
				records, err := db.ListRecords()
				Expect(err).NotTo(HaveOccurred())
				Expect(records).NotTo(BeNil())
				Expect(records).To(BeEmpty())
			})
		})

		When("records exist", func() {
			BeforeEach(func() {
				Expect(db.SaveRecord(newRecord("z", testNow))).To(Succeed())
				Expect(db.SaveRecord(newRecord("b", testNow.Add(time.Hour)))).To(Succeed())
				Expect(db.SaveRecord(newRecord("a", testNow))).To(Succeed())
			})

			It("orders them by creation time, then ID", func() {
				records, err := db.ListRecords()
				Expect(err).NotTo(HaveOccurred())
				ids := make([]string, 0, len(records))
				for _, r := range records {
					ids = append(ids, r.ID)
				}
				Expect(ids).To(Equal([]string{"a", "z", "b"}))
			})
		})
	})

	Describe("DeleteRecord", func() {
		It("removes the record", func() {
			Expect(db.SaveRecord(newRecord("a", testNow))).To(Succeed())
			Expect(db.DeleteRecord("a")).To(Succeed())
			_, err := db.GetRecord("a")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns ErrNotFound for an unknown ID", func() {
			Expect(db.DeleteRecord("missing")).To(MatchError(ErrNotFound))
		})
	})

	It("persists records across reopening", func() {
		Expect(db.SaveRecord(newRecord("a", testNow))).To(Succeed())
		Expect(db.Close()).To(Succeed())

		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
		found, err := db.GetRecord("a")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.Data.DocumentNumber).To(Equal("PO-42"))
	})
})
