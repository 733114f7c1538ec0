package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zombor/invoice-ai/internal/invoice"
)

// RemoteTimeout bounds one call to the analysis endpoint
const RemoteTimeout = 3 * time.Minute

// analyzePath is appended to the configured base URL
const analyzePath = "/functions/v1/analyze-invoice"

// Remote implements the Analyzer interface against a hosted analysis function
type Remote struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewRemote creates a Remote Analyzer posting to baseURL
func NewRemote(baseURL, apiKey string) (*Remote, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("remote analyzer url is required")
	}
	return &Remote{
		url:     strings.TrimRight(baseURL, "/") + analyzePath,
		apiKey:  apiKey,
		timeout: RemoteTimeout,
		client:  &http.Client{},
	}, nil
}

type analyzeRequest struct {
	FileContent string `json:"fileContent"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	PDFBase64   string `json:"pdfBase64,omitempty"`
}

type analyzeResponse struct {
	Success bool              `json:"success"`
	Data    *invoice.Document `json:"data"`
	Error   string            `json:"error"`
}

// Analyze sends the file base64 encoded and decodes the returned document
func (r *Remote) Analyze(ctx context.Context, upload Upload) (*invoice.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	encoded := base64.StdEncoding.EncodeToString(upload.Data)
	reqBody := analyzeRequest{
		FileContent: encoded,
		FileName:    upload.FileName,
		FileType:    upload.ContentType,
	}
	if IsPDF(upload.ContentType, "") {
		reqBody.PDFBase64 = encoded
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, generalError(0, "", fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, generalError(0, "", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
		req.Header.Set("apikey", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, asAnalysisError("", fmt.Errorf("calling analysis API: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, asAnalysisError("", fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		return nil, creditsError(resp.StatusCode, nil)
	}

	var envelope analyzeResponse
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := envelope.Error
		if decodeErr != nil || message == "" {
			message = fmt.Sprintf("analysis API error (status %d)", resp.StatusCode)
		}
		return nil, generalError(resp.StatusCode, message, nil)
	}
	if decodeErr != nil {
		return nil, generalError(resp.StatusCode, "Failed to analyze document", fmt.Errorf("decoding response: %w", decodeErr))
	}
	if !envelope.Success || envelope.Data == nil {
		message := envelope.Error
		if message == "" {
			message = "Failed to analyze document"
		}
		return nil, generalError(resp.StatusCode, message, nil)
	}

	return envelope.Data, nil
}

// Close is a no-op
func (r *Remote) Close() error {
	return nil
}
