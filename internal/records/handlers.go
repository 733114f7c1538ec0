package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zombor/invoice-ai/internal/export"
	"github.com/zombor/invoice-ai/internal/invoice"
	"github.com/zombor/invoice-ai/internal/scanning"
)

// maxUploadSize bounds uploads and backups (50MB for high-resolution scans)
const maxUploadSize = int64(50 << 20)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error body with CORS headers set
func writeError(w http.ResponseWriter, status int, message string) {
	setCORSHeaders(w)
	writeJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps a service error to an HTTP status and client message
func errorStatus(err error) (int, string) {
	var analysisErr *scanning.AnalysisError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Invoice not found"
	case errors.Is(err, ErrNoFile):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType, "Unsupported file type. Upload a PDF, a spreadsheet or an image."
	case errors.Is(err, ErrLineOutOfRange):
		return http.StatusBadRequest, "Order line not found"
	case errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest, "Unknown export format"
	case errors.As(err, &analysisErr):
		switch analysisErr.Kind {
		case scanning.KindCredits:
			return http.StatusPaymentRequired, analysisErr.Message
		case scanning.KindTimeout:
			return http.StatusGatewayTimeout, analysisErr.Message
		default:
			return http.StatusBadGateway, analysisErr.Message
		}
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// fail logs err and writes the mapped error response
func fail(w http.ResponseWriter, msg string, err error, attrs ...any) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, append(attrs, "error", err)...)
	} else {
		slog.Warn(msg, append(attrs, "error", err)...)
	}
	writeError(w, status, message)
}

// handleList returns all stored invoices
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.List()
	if err != nil {
		fail(w, "Error listing invoices", err)
		return
	}
	if records == nil {
		records = []*Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleUpload analyzes an uploaded document and stores the result
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusBadRequest, "No file was selected. Please choose a file to upload.")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	record, err := s.service.Process(r.Context(), scanning.Upload{
		Data:        data,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		fail(w, "Error processing document", err, "filename", header.Filename)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// handleGet returns a single stored invoice
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.service.Get(r.PathValue("id"))
	if err != nil {
		fail(w, "Error getting invoice", err, "id", r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleUpdate replaces the document of a stored invoice
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var doc invoice.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadSize)).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := s.service.Update(r.PathValue("id"), doc)
	if err != nil {
		fail(w, "Error updating invoice", err, "id", r.PathValue("id"))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleUpdateField sets one field by dotted path
func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path  string `json:"path"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := s.service.UpdateField(r.PathValue("id"), req.Path, req.Value)
	if err != nil {
		fail(w, "Error updating field", err, "id", r.PathValue("id"), "path", req.Path)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleUpdateColumn sets one table cell
func (s *Server) handleUpdateColumn(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid line index")
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := s.service.UpdateColumn(r.PathValue("id"), index, r.PathValue("key"), req.Value)
	if err != nil {
		fail(w, "Error updating column", err, "id", r.PathValue("id"), "line", index, "column", r.PathValue("key"))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleDelete deletes a stored invoice
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.PathValue("id")); err != nil {
		fail(w, "Error deleting invoice", err, "id", r.PathValue("id"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetFile returns the original upload of a stored invoice
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.File(r.PathValue("id"))
	if err != nil {
		fail(w, "Error getting file", err, "id", r.PathValue("id"))
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleExport renders a stored invoice as a downloadable artifact
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.service.Export(r.PathValue("id"), export.Format(r.PathValue("format")))
	if err != nil {
		fail(w, "Error exporting invoice", err, "id", r.PathValue("id"), "format", r.PathValue("format"))
		return
	}
	writeAttachment(w, artifact)
}

// handleExportAll downloads every stored invoice as a JSON backup
func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportAll()
	if err != nil {
		fail(w, "Error exporting invoices", err)
		return
	}
	writeAttachment(w, export.Artifact{
		Data:     data,
		Filename: fmt.Sprintf("invoice-ai-backup-%s.json", s.service.timeSource.Now().UTC().Format("2006-01-02")),
		MIMEType: export.MIMEJSON,
	})
}

// handleImportAll restores invoices from a JSON backup
func (s *Server) handleImportAll(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error reading backup")
		return
	}

	result, err := s.service.ImportAll(data)
	if err != nil {
		slog.Warn("Error importing backup", "error", err)
		setCORSHeaders(w)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid backup file",
			"success": result.Success,
			"failed":  result.Failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeAttachment(w http.ResponseWriter, artifact export.Artifact) {
	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Write(artifact.Data)
}
