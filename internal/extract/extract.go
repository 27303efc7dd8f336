// Package extract turns binary documents into plain text for
// classification. The core consumes the Extractor interface; the PDF
// implementation lives here so callers can swap it out in tests.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/intelfuse-ai/intelfuse/internal/classify"
)

// Extractor converts one document into plain text, preserving page
// order as best-effort.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

// ExtractionError reports a corrupt or unreadable document. Document
// extraction failures are fatal for the whole run.
type ExtractionError struct {
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract text from %s: %v", e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PDFExtractor extracts text from PDF documents page by page.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract concatenates per-page text in page order with a single space
// separator and collapses whitespace. Returns ExtractionError on any
// unreadable input.
func (x *PDFExtractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Name: name, Err: err}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Name: name, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		pages = append(pages, text)
	}

	return classify.CleanText(strings.Join(pages, " ")), nil
}
