package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// pageBreak separates pages in pre-extracted text files (pdftotext output).
const pageBreak = "\f"

// TextExtractor reads reports already converted to plain text.
type TextExtractor struct{}

// NewTextExtractor creates a text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract reads r and splits it into pages on form feeds. A trailing form
// feed does not add a page.
func (t *TextExtractor) Extract(name string, r io.Reader) (model.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", name, err)
	}

	doc := model.Document{ID: uuid.NewString(), Name: name}
	pages := strings.Split(string(data), pageBreak)
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	for i, p := range pages {
		doc.Pages = append(doc.Pages, model.TextPage(i, p))
	}
	return doc, nil
}

// Extractor opens report files by extension.
type Extractor struct {
	pdf  *PDFExtractor
	text *TextExtractor
}

// New creates an extractor for .pdf and .txt files.
func New(pdf *PDFExtractor, text *TextExtractor) *Extractor {
	if pdf == nil {
		pdf = NewPDFExtractor(nil)
	}
	if text == nil {
		text = NewTextExtractor()
	}
	return &Extractor{pdf: pdf, text: text}
}

// Supported reports whether path has an extension the extractor reads.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// Open reads the file at path into a Document named after its base name.
func (e *Extractor) Open(path string) (model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		info, err := f.Stat()
		if err != nil {
			return model.Document{}, fmt.Errorf("stat %s: %w", path, err)
		}
		return e.pdf.Extract(name, f, info.Size())
	case ".txt":
		return e.text.Extract(name, f)
	default:
		return model.Document{}, fmt.Errorf("unsupported file type: %s", path)
	}
}

// OpenAll opens paths in order. The returned documents keep that order.
func (e *Extractor) OpenAll(paths []string) ([]model.Document, error) {
	docs := make([]model.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := e.Open(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
