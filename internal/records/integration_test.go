package records

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/invoice-ai/internal/export"
	"github.com/zombor/invoice-ai/internal/scanning"
)

var _ = Describe("Integration", func() {
	var (
		db       *BoltDB
		store    *LocalStorage
		server   *Server
		ghServer *ghttp.Server
	)

	BeforeEach(func() {
		tempDir := GinkgoT().TempDir()

		var err error
		db, err = NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = NewLocalStorage(filepath.Join(tempDir, "uploads"))
		Expect(err).NotTo(HaveOccurred())

		service := NewService(db, scanning.NewMock(0), store, export.NewExporter("en-US"))
		server = NewServer(service, BasicAuth{})
		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		ghServer.Close()
		db.Close()
	})

	send := func(req *http.Request) (int, []byte) {
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, body
	}

	It("uploads, edits, exports and deletes a document", func() {
		ghServer.AppendHandlers(
			server.ServeHTTP, // upload
			server.ServeHTTP, // edit
			server.ServeHTTP, // export
			server.ServeHTTP, // delete
		)

		// Upload
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "order.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("%PDF-1.4 ... fake pdf content ..."))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		req, err := http.NewRequest(http.MethodPost, ghServer.URL()+"/api/invoices", body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", writer.FormDataContentType())

		status, respBody := send(req)
		Expect(status).To(Equal(http.StatusCreated))

		var created Record
		Expect(json.Unmarshal(respBody, &created)).To(Succeed())
		Expect(created.Data.OrderLines).To(HaveLen(4))
		Expect(created.Data.TotalAmount).To(Equal(58500.0))
		Expect(created.Data.Notes).To(Equal("Delivered from file: order.pdf"))

		data, err := store.Get(created.StoredFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix("%PDF-1.4"))

		// Edit a cell
		req, err = http.NewRequest(http.MethodPatch,
			ghServer.URL()+"/api/invoices/"+created.ID+"/lines/3/columns/description",
			strings.NewReader(`{"value": "Cable Kit, black"}`))
		Expect(err).NotTo(HaveOccurred())
		status, _ = send(req)
		Expect(status).To(Equal(http.StatusOK))

		saved, err := db.GetRecord(created.ID)
		Expect(err).NotTo(HaveOccurred())
		description, ok := saved.Data.OrderLines[3].Cell("description")
		Expect(ok).To(BeTrue())
		Expect(description).To(Equal("Cable Kit, black"))

		// Export the order lines
		req, err = http.NewRequest(http.MethodGet, ghServer.URL()+"/api/invoices/"+created.ID+"/export/order-lines", nil)
		Expect(err).NotTo(HaveOccurred())
		status, respBody = send(req)
		Expect(status).To(Equal(http.StatusOK))
		Expect(string(respBody)).To(HavePrefix("#,Description,Qty,Unit,Unit Price,Total\n"))
		Expect(string(respBody)).To(ContainSubstring(`"Cable Kit, black"`))

		// Delete
		req, err = http.NewRequest(http.MethodDelete, ghServer.URL()+"/api/invoices/"+created.ID, nil)
		Expect(err).NotTo(HaveOccurred())
		status, _ = send(req)
		Expect(status).To(Equal(http.StatusNoContent))

		_, err = db.GetRecord(created.ID)
		Expect(err).To(MatchError(ErrNotFound))
		_, err = store.Get(created.StoredFile)
		Expect(err).To(HaveOccurred())
	})
})
