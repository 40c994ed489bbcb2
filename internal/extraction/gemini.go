package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// prescriptionPrompt asks the vision model to transcribe a prescription
// into labeled lines the downstream parser understands. Fields the model
// cannot read come back as "Not found" so the parser can skip them.
const prescriptionPrompt = `Please analyze this prescription image and extract the following information in this exact format:

Patient: [Patient Name]
Doctor: [Doctor Name]
Medicine: [Medicine Name]
Dosage: [Dosage]
Quantity: [Quantity]
Instructions: [Instructions if any]

Repeat the Medicine/Dosage/Quantity lines for each prescribed medicine.
If any field is not visible or unclear, use "Not found" for that field.
Do not use markdown formatting. Return plain text lines only.`

// Gemini implements the Recognizer interface using Google Gemini vision
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Recognizer instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Name identifies the engine in diagnostics
func (g *Gemini) Name() string {
	return "gemini"
}

// Recognize reads the prescription image and returns the transcribed text
func (g *Gemini) Recognize(ctx context.Context, imageData []byte, contentType string) (string, error) {
	// Normalize to PNG so the model always receives a format it accepts
	finalImageData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	parts := []genai.Part{
		genai.ImageData("png", finalImageData),
		genai.Text(prescriptionPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	return candidateText(resp)
}

// Recommend asks the model for alternatives to a medicine, choosing only
// from the supplied inventory names.
func (g *Gemini) Recommend(ctx context.Context, medicine string, inventory []string) (string, error) {
	if medicine == "" {
		return "", fmt.Errorf("medicine name is required")
	}

	prompt := fmt.Sprintf(`Based on the medicine %q, suggest up to 3 alternatives or similar medications from this list:
%s

For each suggestion, explain why it's an alternative (e.g., same drug class, similar effects, etc.).
Only suggest from the provided list and respond in this format:

1. [Medicine Name]: [Reason for recommendation]
2. [Medicine Name]: [Reason for recommendation]
3. [Medicine Name]: [Reason for recommendation]

If no alternatives can be found, respond with "No similar medications found in the database."`,
		medicine, strings.Join(inventory, "\n"))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating recommendations: %w", err)
	}

	return candidateText(resp)
}

// candidateText collects the text parts from the first candidate and
// strips markdown fences in case the model ignores the plain-text
// instruction.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(out.String())
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
