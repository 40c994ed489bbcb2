package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Error reports that no recognizer could produce text for an image.
type Error struct {
	TriedPrimary  bool
	TriedFallback bool
	PrimaryErr    error
	FallbackErr   error
}

func (e *Error) Error() string {
	var parts []string
	if e.TriedPrimary {
		if e.PrimaryErr != nil {
			parts = append(parts, fmt.Sprintf("primary: %v", e.PrimaryErr))
		} else {
			parts = append(parts, "primary: empty text")
		}
	} else {
		parts = append(parts, "primary: not configured")
	}
	if e.TriedFallback {
		if e.FallbackErr != nil {
			parts = append(parts, fmt.Sprintf("fallback: %v", e.FallbackErr))
		} else {
			parts = append(parts, "fallback: empty text")
		}
	} else {
		parts = append(parts, "fallback: not configured")
	}
	return "text extraction failed (" + strings.Join(parts, "; ") + ")"
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.PrimaryErr != nil {
		errs = append(errs, e.PrimaryErr)
	}
	if e.FallbackErr != nil {
		errs = append(errs, e.FallbackErr)
	}
	return errs
}

// Extractor turns a prescription image into raw text. It tries the
// primary recognizer first and falls back to the local engine when the
// primary errors, is not configured, or returns empty text. A non-empty
// primary result is returned as-is; the fallback is never consulted to
// second-guess it.
type Extractor struct {
	primary  Recognizer
	fallback Recognizer
}

// NewExtractor creates an Extractor. primary may be nil when no cloud
// credential is configured; fallback may be nil when no local engine is
// installed. At least one recognizer must be set.
func NewExtractor(primary, fallback Recognizer) (*Extractor, error) {
	if primary == nil && fallback == nil {
		return nil, fmt.Errorf("at least one recognizer is required")
	}
	return &Extractor{primary: primary, fallback: fallback}, nil
}

// Extract recognizes text from an image, preferring the primary engine.
// It returns *Error when every configured engine fails or yields empty text.
func (e *Extractor) Extract(ctx context.Context, imageData []byte, contentType string) (*Result, error) {
	extractErr := &Error{}

	if e.primary != nil {
		extractErr.TriedPrimary = true
		text, err := e.primary.Recognize(ctx, imageData, contentType)
		if err == nil && strings.TrimSpace(text) != "" {
			slog.Info("Extracted prescription text", "engine", e.primary.Name(), "source", SourcePrimary)
			return &Result{Text: text, Source: SourcePrimary}, nil
		}
		extractErr.PrimaryErr = err
		if err != nil {
			slog.Warn("Primary recognizer failed, falling back", "engine", e.primary.Name(), "error", err)
		} else {
			slog.Warn("Primary recognizer returned empty text, falling back", "engine", e.primary.Name())
		}
	}

	if e.fallback != nil {
		extractErr.TriedFallback = true
		text, err := e.fallback.Recognize(ctx, imageData, contentType)
		if err == nil && strings.TrimSpace(text) != "" {
			slog.Info("Extracted prescription text", "engine", e.fallback.Name(), "source", SourceFallback)
			return &Result{
				Text:       text,
				Source:     SourceFallback,
				Confidence: estimateConfidence(text),
			}, nil
		}
		extractErr.FallbackErr = err
	}

	return nil, extractErr
}

// Close closes all configured recognizers.
func (e *Extractor) Close() error {
	var firstErr error
	for _, r := range []Recognizer{e.primary, e.fallback} {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// estimateConfidence scores OCR output quality from simple text shape
// heuristics. Local OCR reports no confidence of its own, so this is a
// rough signal for diagnostics, not a gate.
func estimateConfidence(text string) float64 {
	confidence := 0.5

	words := strings.Fields(text)
	if len(words) > 10 {
		confidence += 0.1
	}
	if len(words) > 50 {
		confidence += 0.1
	}

	alphaCount := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alphaCount++
		}
	}
	if len(text) > 0 {
		ratio := float64(alphaCount) / float64(len(text))
		if ratio > 0.5 && ratio < 0.9 {
			confidence += 0.1
		}
	}

	if confidence > 0.85 {
		confidence = 0.85
	}
	return confidence
}
