package extraction

import "context"

// Source identifies which recognizer produced an extraction result.
type Source int

const (
	// SourcePrimary is the cloud vision recognizer.
	SourcePrimary Source = iota + 1
	// SourceFallback is the local OCR recognizer.
	SourceFallback
)

// String returns a human-readable engine label for logging.
func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result contains the text recognized from a prescription image.
type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
	// Confidence is a heuristic quality estimate in [0,1].
	// Zero means the engine reported none.
	Confidence float64 `json:"confidence,omitempty"`
}

// Recognizer defines the interface for a single text recognition engine
type Recognizer interface {
	// Recognize reads all visible text from a prescription image or PDF
	Recognize(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Name identifies the engine in diagnostics
	Name() string
	// Close releases engine resources
	Close() error
}
