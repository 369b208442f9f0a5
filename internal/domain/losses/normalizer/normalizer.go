// Package normalizer turns extracted page text into clean report lines.
// It collapses whitespace, drops headers, footers and banners, and keeps track
// of the department section and reporting period printed on the report.
package normalizer

import (
	"regexp"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// DefaultMarkers are substrings that only ever appear on non-item lines of a
// Lince loss report.
var DefaultMarkers = []string{
	// Report title and headers
	"Lince", "Perdas por Departamento", "Relatório", "Relatorio",
	"Código", "Descrição", "Usuário:",
	// Page and period labels
	"Página", "Pagina", "Page ", "Período", "Periodo", "Emissão", "Emissao", "Emitido em",
	// Footers
	"http://", "https://", "www.",
	// Total banners
	"Total Geral", "Total do", "Total Setor", "Total Departamento", "Subtotal",
}

var (
	// "0012 PADARIA -" opens a department section.
	sectionPattern = regexp.MustCompile(`^\d{4}\s+(.+?)\s*-\s*$`)
	// "01/12/2025 a 07/12/2025"
	periodRangePattern = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(?:a|até|ate)\s+\d{2}/\d{2}/\d{4}`)
	// "Período: 12/2025" or "Periodo 01/12/2025"
	periodLabelPattern = regexp.MustCompile(`Per[ií]odo\s*:?\s*(?:\d{2}/)?(\d{2})/(\d{4})`)
)

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMarkers appends boilerplate markers to the defaults.
func WithMarkers(markers ...string) Option {
	return func(n *Normalizer) {
		n.markers = append(n.markers, markers...)
	}
}

// Normalizer cleans page text into RawLines.
type Normalizer struct {
	markers []string
	matcher *ahocorasick.Matcher
	// Matcher.Match mutates internal state and must not run concurrently.
	mu sync.Mutex
}

// New builds a normalizer over DefaultMarkers plus any extra markers.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		markers: append([]string(nil), DefaultMarkers...),
	}
	for _, opt := range opts {
		opt(n)
	}

	patterns := make([][]byte, 0, len(n.markers))
	for _, m := range n.markers {
		if strings.TrimSpace(m) != "" {
			patterns = append(patterns, []byte(m))
		}
	}
	if len(patterns) > 0 {
		n.matcher = ahocorasick.NewMatcher(patterns)
	}
	return n
}

// Markers returns the active boilerplate markers.
func (n *Normalizer) Markers() []string {
	return append([]string(nil), n.markers...)
}

// PageLines are the surviving lines of one page.
type PageLines struct {
	Page  int
	Lines []model.RawLine
}

// Result is the normalized form of one document.
type Result struct {
	Pages []PageLines
	// EmptyPages counts pages whose extraction returned no text at all.
	EmptyPages    int
	Sections      []string
	DetectedMonth string
}

// LineCount returns the number of RawLines across every page.
func (r Result) LineCount() int {
	total := 0
	for _, p := range r.Pages {
		total += len(p.Lines)
	}
	return total
}

// NormalizeDocument normalizes every page of doc. docIndex is the canonical
// position of the document in its batch.
func (n *Normalizer) NormalizeDocument(docIndex int, doc model.Document) Result {
	var res Result
	section := ""
	seen := make(map[string]bool)

	for _, page := range doc.Pages {
		if page.Text == nil || strings.TrimSpace(*page.Text) == "" {
			res.EmptyPages++
			continue
		}

		pl := PageLines{Page: page.Index}
		for _, raw := range splitLines(*page.Text) {
			line := CollapseSpaces(raw)
			if line == "" {
				continue
			}

			if name, ok := SectionName(line); ok {
				section = name
				if !seen[name] {
					seen[name] = true
					res.Sections = append(res.Sections, name)
				}
				continue
			}

			if month, ok := DetectMonth(line); ok {
				if res.DetectedMonth == "" {
					res.DetectedMonth = month
				}
				continue
			}

			if n.IsBoilerplate(line) {
				continue
			}

			pl.Lines = append(pl.Lines, model.RawLine{
				Text:     line,
				Page:     page.Index,
				Document: docIndex,
				Section:  section,
			})
		}

		if len(pl.Lines) > 0 {
			res.Pages = append(res.Pages, pl)
		}
	}

	return res
}

// IsBoilerplate reports whether a collapsed line is a header, footer, total
// banner or page marker.
func (n *Normalizer) IsBoilerplate(line string) bool {
	if strings.HasPrefix(line, "Total") {
		return true
	}
	if n.matcher == nil {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.matcher.Match([]byte(line))) > 0
}

// CollapseSpaces trims the line and folds every whitespace run into one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SectionName returns the department name when line is a section banner.
func SectionName(line string) (string, bool) {
	m := sectionPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(strings.ReplaceAll(m[1], "-", ""))
	if name == "" {
		return "", false
	}
	return CollapseSpaces(name), true
}

// DetectMonth extracts MM/YYYY from a reporting-period line.
func DetectMonth(line string) (string, bool) {
	if m := periodRangePattern.FindStringSubmatch(line); m != nil {
		return m[2] + "/" + m[3], true
	}
	if m := periodLabelPattern.FindStringSubmatch(line); m != nil {
		return m[1] + "/" + m[2], true
	}
	return "", false
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
