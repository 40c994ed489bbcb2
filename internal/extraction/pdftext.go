package extraction

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// PDFPageTexts returns the embedded text of each page of a PDF, one
// string per page. Scanned PDFs without a text layer yield empty strings;
// callers wanting OCR should render and recognize instead.
func PDFPageTexts(pdfData []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
