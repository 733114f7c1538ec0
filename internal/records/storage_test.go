package records

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = filepath.Join(GinkgoT().TempDir(), "uploads")
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the base directory", func() {
		Expect(tmpDir).To(BeADirectory())
	})

	Describe("Save", func() {
		var (
			name string
			err  error
		)

		JustBeforeEach(func() {
			name, err = storage.Save("id-1_order.pdf", []byte("%PDF-1.4"))
		})

		It("writes the file and returns its name", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("id-1_order.pdf"))
			Expect(filepath.Join(tmpDir, "id-1_order.pdf")).To(BeAnExistingFile())
		})

		It("can be read back", func() {
			data, getErr := storage.Get(name)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("%PDF-1.4")))
		})
	})

	It("keeps traversing names inside the base directory", func() {
		name, err := storage.Save("../escape.txt", []byte("x"))
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("escape.txt"))
		Expect(filepath.Join(tmpDir, "escape.txt")).To(BeAnExistingFile())
		Expect(filepath.Join(filepath.Dir(tmpDir), "escape.txt")).NotTo(BeAnExistingFile())
	})

	Describe("Get", func() {
		It("returns an error for a missing file", func() {
			_, err := storage.Get("missing.pdf")
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("Delete", func() {
		It("removes the file", func() {
			name, err := storage.Save("a.png", []byte("png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete(name)).To(Succeed())
			Expect(filepath.Join(tmpDir, "a.png")).NotTo(BeAnExistingFile())
		})

		It("returns an error for a missing file", func() {
			Expect(storage.Delete("missing.png")).To(HaveOccurred())
		})
	})
})
