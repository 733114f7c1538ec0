package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zombor/invoice-ai/internal/invoice"
)

// geminiTimeout bounds one extraction request
const geminiTimeout = 3 * time.Minute

// Gemini implements the Analyzer interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Analyzer instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// Analyze extracts a document from an uploaded file
func (g *Gemini) Analyze(ctx context.Context, upload Upload) (*invoice.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	input, err := prepareContent(upload)
	if err != nil {
		return nil, generalError(0, "Failed to read file", err)
	}

	// genai.ImageData expects the format suffix ("png"), not the MIME type
	parts := make([]genai.Part, 0, len(input.images)+2)
	for _, img := range input.images {
		parts = append(parts, genai.ImageData("png", img))
	}
	if input.text != "" {
		parts = append(parts, genai.Text(input.text))
	}
	parts = append(parts, genai.Text(documentPrompt))

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, asAnalysisError("Failed to analyze document", fmt.Errorf("generating content: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, generalError(0, "No response from gemini", nil)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	doc, err := parseDocumentJSON(responseText.String())
	if err != nil {
		return nil, generalError(0, "Failed to analyze document", fmt.Errorf("parsing document data: %w", err))
	}

	return withCounts(doc, input), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
