package parser

import (
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// minNumericTail is how many numeric tokens a line needs before it is
// considered complete on its own.
const minNumericTail = 2

// Reconstruct glues wrapped lines back together. A line with fewer than two
// numeric tokens followed by a line with at least two is one item whose name
// spilled over; both become a single LogicalLine. lines must belong to one
// page: wraps are never joined across a page boundary.
func Reconstruct(lines []model.RawLine) []model.LogicalLine {
	out := make([]model.LogicalLine, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		cur := lines[i]

		if i+1 < len(lines) &&
			CountNumericTokens(cur.Text) < minNumericTail &&
			CountNumericTokens(lines[i+1].Text) >= minNumericTail {
			out = append(out, model.LogicalLine{
				Text:    cur.Text + " " + lines[i+1].Text,
				Page:    cur.Page,
				Parts:   2,
				Section: cur.Section,
			})
			i++
			continue
		}

		out = append(out, model.LogicalLine{
			Text:    cur.Text,
			Page:    cur.Page,
			Parts:   1,
			Section: cur.Section,
		})
	}

	return out
}
