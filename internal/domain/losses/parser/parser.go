// Package parser recovers loss-report line items from normalized page text.
// Wrapped lines are glued back together, tokens are classified once, and a
// right-to-left extractor picks the product name, quantity and value.
package parser

import (
	"io"
	"log/slog"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/normalizer"
)

// Config configures the report parser.
type Config struct {
	Units        []string // Unit codes (default: DefaultUnits)
	ExtraMarkers []string // Boilerplate markers added to the normalizer defaults
}

// DefaultConfig returns a parser config for the standard Lince layout.
func DefaultConfig() Config {
	return Config{
		Units: append([]string(nil), DefaultUnits...),
	}
}

// Parser turns a Document into LineItems. It holds no per-document state and
// is safe for concurrent use.
type Parser struct {
	config     Config
	normalizer *normalizer.Normalizer
	classifier *Classifier
	logger     *slog.Logger
}

// NewParser creates a parser. A nil logger discards output.
func NewParser(config Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{
		config:     config,
		normalizer: normalizer.New(normalizer.WithMarkers(config.ExtraMarkers...)),
		classifier: NewClassifier(config.Units...),
		logger:     logger,
	}
}

// ParseDocument runs the full per-document pipeline. index is the canonical
// position of doc in its batch. Bad pages and lines never fail the document;
// they are counted in the result.
func (p *Parser) ParseDocument(index int, doc model.Document) model.DocumentResult {
	norm := p.normalizer.NormalizeDocument(index, doc)

	result := model.DocumentResult{
		DocumentID:    doc.ID,
		Name:          doc.Name,
		Index:         index,
		EmptyPages:    norm.EmptyPages,
		Sections:      norm.Sections,
		DetectedMonth: norm.DetectedMonth,
		SkipCounts:    make(map[model.SkipReason]int),
	}

	for _, page := range norm.Pages {
		for _, line := range Reconstruct(page.Lines) {
			result.LogicalLines++

			ex := p.ParseLine(line)
			if !ex.OK {
				result.SkipCounts[ex.Reason]++
				p.logger.Debug("line skipped",
					"document", doc.Name,
					"page", line.Page,
					"reason", ex.Reason,
					"line", line.Text,
				)
				continue
			}
			result.Items = append(result.Items, ex.Item)
		}
	}

	return result
}

// ParseLine classifies and extracts a single logical line.
func (p *Parser) ParseLine(line model.LogicalLine) Extraction {
	ex := Extract(p.classifier.ClassifyLine(line))
	if ex.OK {
		ex.Item.Section = line.Section
	}
	return ex
}

// LineTrace describes how one logical line was read.
type LineTrace struct {
	Line       model.LogicalLine
	Tokens     []model.Token
	Extraction Extraction
}

// Trace runs the pipeline on doc and reports every logical line with its
// tokens and outcome.
func (p *Parser) Trace(doc model.Document) []LineTrace {
	norm := p.normalizer.NormalizeDocument(0, doc)

	var traces []LineTrace
	for _, page := range norm.Pages {
		for _, line := range Reconstruct(page.Lines) {
			tokens := p.classifier.ClassifyLine(line)
			traces = append(traces, LineTrace{
				Line:       line,
				Tokens:     tokens,
				Extraction: Extract(tokens),
			})
		}
	}
	return traces
}
