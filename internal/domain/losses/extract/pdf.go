// Package extract turns report files into per-page text documents.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// wordGap is the fraction of the font size above which two glyph runs on the
// same row are treated as separate words.
const wordGap = 0.15

// PDFExtractor reads text from PDF reports, one PageText per page.
type PDFExtractor struct {
	logger *slog.Logger
}

// NewPDFExtractor creates a PDF extractor. A nil logger discards output.
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PDFExtractor{logger: logger}
}

// Extract reads every page of the PDF in r. A page that cannot be read gets a
// nil text and does not fail the document; only an unreadable file does.
func (e *PDFExtractor) Extract(name string, r io.ReaderAt, size int64) (model.Document, error) {
	doc := model.Document{ID: uuid.NewString(), Name: name}

	if size == 0 {
		return doc, fmt.Errorf("open pdf %s: empty file", name)
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return doc, fmt.Errorf("open pdf %s: %w", name, err)
	}

	total := reader.NumPage()
	doc.Pages = make([]model.PageText, 0, total)
	for i := 1; i <= total; i++ {
		text, err := pageText(reader, i)
		if err != nil {
			e.logger.Warn("page extraction failed", "document", name, "page", i, "error", err)
			doc.Pages = append(doc.Pages, model.PageText{Index: i - 1})
			continue
		}
		doc.Pages = append(doc.Pages, model.TextPage(i-1, text))
	}

	return doc, nil
}

// ExtractBytes is Extract over an in-memory file.
func (e *PDFExtractor) ExtractBytes(name string, data []byte) (model.Document, error) {
	return e.Extract(name, bytes.NewReader(data), int64(len(data)))
}

// pageText rebuilds the visual rows of a page. Text grouped by row keeps
// each report line on its own line; plain text is the fallback.
func pageText(reader *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", n)
	}

	rows, rowErr := page.GetTextByRow()
	if rowErr == nil && len(rows) > 0 {
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			if line := rowText(row.Content); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n"), nil
	}

	plain, plainErr := page.GetPlainText(nil)
	if plainErr != nil {
		if rowErr != nil {
			return "", fmt.Errorf("read rows: %w; read text: %w", rowErr, plainErr)
		}
		return "", plainErr
	}
	return plain, nil
}

// rowText joins the glyph runs of one row left to right, inserting a space
// wherever the horizontal gap is wider than a fraction of the font size.
func rowText(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}

	sorted := append([]pdf.Text(nil), texts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	for i, t := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > prev.FontSize*wordGap && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
