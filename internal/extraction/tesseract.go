package extraction

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Recognizer interface using a local Tesseract
// install via gosseract. It is the deterministic offline fallback: no
// network dependency, same output for the same image every time.
type Tesseract struct {
	language string
}

// NewTesseract creates a new Tesseract Recognizer instance
func NewTesseract(language string) (*Tesseract, error) {
	if language == "" {
		language = "eng"
	}
	// Probe for a usable tesseract install up front so a missing binary
	// fails at startup, not on the first upload
	client := gosseract.NewClient()
	defer client.Close()
	if client.Version() == "" {
		return nil, fmt.Errorf("tesseract is not installed or not on PATH")
	}
	return &Tesseract{language: language}, nil
}

// Name identifies the engine in diagnostics
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Recognize runs OCR over the prescription image and returns the raw text
func (t *Tesseract) Recognize(ctx context.Context, imageData []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Tesseract reads PNG reliably; normalize PDFs and phone formats first
	finalImageData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("setting tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(finalImageData); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract ocr: %w", err)
	}
	return text, nil
}

// Close releases engine resources. The gosseract client is per-call, so
// there is nothing to release here.
func (t *Tesseract) Close() error {
	return nil
}
