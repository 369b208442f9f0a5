package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

var codePattern = regexp.MustCompile(`^\d{3,10}$`)

// DefaultUnits are the unit-of-measure codes printed in the report.
var DefaultUnits = []string{
	"UN", "UND", "KG", "G", "GR", "PCT", "PC", "CX", "LT", "L", "ML", "FD", "DZ", "BD", "SC",
}

// Classifier tags the tokens of a logical line.
type Classifier struct {
	units map[string]struct{}
}

// NewClassifier builds a classifier over the given unit codes, or
// DefaultUnits when none are given.
func NewClassifier(units ...string) *Classifier {
	if len(units) == 0 {
		units = DefaultUnits
	}
	c := &Classifier{units: make(map[string]struct{}, len(units))}
	for _, u := range units {
		c.units[strings.ToUpper(u)] = struct{}{}
	}
	return c
}

// IsUnit reports whether s is a known unit code, ignoring case.
func (c *Classifier) IsUnit(s string) bool {
	_, ok := c.units[strings.ToUpper(s)]
	return ok
}

// Classify tags each field. Only the first field can be a product code.
func (c *Classifier) Classify(fields []string) []model.Token {
	tokens := make([]model.Token, 0, len(fields))

	for i, f := range fields {
		tok := model.Token{Raw: f, Kind: model.TokenText}

		switch {
		case i == 0 && codePattern.MatchString(f):
			tok.Kind = model.TokenCode
		case isSeparator(f):
			tok.Kind = model.TokenSeparator
		case c.IsUnit(f):
			tok.Kind = model.TokenUnit
		case IsNumericToken(f):
			if v, scale, ok := ParseNumber(f); ok {
				tok.Kind = model.TokenNumeric
				tok.Value = v
				tok.Scale = scale
			}
		}

		tokens = append(tokens, tok)
	}

	return tokens
}

// ClassifyLine splits and classifies a logical line.
func (c *Classifier) ClassifyLine(line model.LogicalLine) []model.Token {
	return c.Classify(line.Fields())
}

func isSeparator(s string) bool {
	return s == "-" || s == "–" || s == "—"
}
