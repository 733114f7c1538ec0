package scanning

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/heic": true,
	"image/heif": true,
}

func extension(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

func normalizeMIME(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// IsPDF reports whether the upload is a PDF, by MIME type or extension
func IsPDF(contentType, fileName string) bool {
	return normalizeMIME(contentType) == mimePDF || extension(fileName) == ".pdf"
}

// IsSpreadsheet reports whether the upload is an Excel workbook
func IsSpreadsheet(contentType, fileName string) bool {
	switch normalizeMIME(contentType) {
	case mimeXLSX, mimeXLS:
		return true
	}
	ext := extension(fileName)
	return ext == ".xlsx" || ext == ".xls"
}

// IsImage reports whether the upload is a supported image
func IsImage(contentType, fileName string) bool {
	if imageTypes[normalizeMIME(contentType)] {
		return true
	}
	switch extension(fileName) {
	case ".png", ".jpg", ".jpeg", ".gif", ".heic", ".heif":
		return true
	}
	return false
}

// IsSupported reports whether the upload can be analyzed
func IsSupported(contentType, fileName string) bool {
	return IsPDF(contentType, fileName) || IsSpreadsheet(contentType, fileName) || IsImage(contentType, fileName)
}

// DetectContentType resolves the MIME type of an upload whose client did not
// send a useful one
func DetectContentType(contentType, fileName string, data []byte) string {
	ct := normalizeMIME(contentType)
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch extension(fileName) {
	case ".xlsx":
		return mimeXLSX
	case ".xls":
		return mimeXLS
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	if byExt := mime.TypeByExtension(extension(fileName)); byExt != "" {
		return normalizeMIME(byExt)
	}
	return normalizeMIME(http.DetectContentType(data))
}
