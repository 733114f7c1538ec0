package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// maxPDFPages caps how many PDF pages are rendered for a vision model
const maxPDFPages = 10

// content is an upload prepared for a language model: page images and/or
// extracted text
type content struct {
	images [][]byte // PNG encoded
	text   string
	pages  int
	sheets int
}

// prepareContent converts an upload into model input. PDFs are rendered page
// by page, spreadsheets become text and images are normalized to PNG.
func prepareContent(upload Upload) (content, error) {
	contentType := DetectContentType(upload.ContentType, upload.FileName, upload.Data)

	switch {
	case IsPDF(contentType, upload.FileName):
		images, err := pdfToImages(upload.Data)
		if err != nil {
			return content{}, fmt.Errorf("converting PDF to images: %w", err)
		}
		return content{images: images, pages: len(images)}, nil
	case IsSpreadsheet(contentType, upload.FileName):
		text, sheets, err := spreadsheetText(upload.Data, upload.FileName)
		if err != nil {
			return content{}, fmt.Errorf("reading spreadsheet: %w", err)
		}
		return content{text: text, sheets: sheets}, nil
	default:
		img, err := toPNG(upload.Data, contentType)
		if err != nil {
			return content{}, err
		}
		return content{images: [][]byte{img}, pages: 1}, nil
	}
}

// pdfToImages renders up to maxPDFPages pages of a PDF as PNG images
func pdfToImages(pdfData []byte) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := min(doc.NumPage(), maxPDFPages)
	images := make([][]byte, 0, pages)
	for n := 0; n < pages; n++ {
		img, err := doc.Image(n)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// Go's standard image package doesn't support HEIC (common on iPhones)
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF, XLSX: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks for an ftyp box with a HEIC-related brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// toPNG returns PNG data unchanged and converts every other image
func toPNG(imageData []byte, mimeType string) ([]byte, error) {
	if mimeType == "image/png" && !isHEICFormat(imageData) {
		return imageData, nil
	}
	pngData, err := imageToPNG(imageData, mimeType)
	if err != nil {
		return nil, fmt.Errorf("converting image to PNG: %w", err)
	}
	return pngData, nil
}
