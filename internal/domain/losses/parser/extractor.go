package parser

import (
	"strings"
	"unicode"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
	"github.com/FACorreiaa/lince-perdas/pkg/money"
)

// quantityScale is the number of decimals quantities are printed with;
// monetary columns use two.
const quantityScale = 3

// leadingPunct is stripped from the start of a product name ("- PAO" -> "PAO").
const leadingPunct = "-–—.,;:/*|"

// Extraction is the outcome of running the extractor on one line.
type Extraction struct {
	Item   model.LineItem
	OK     bool
	Reason model.SkipReason
}

func skip(reason model.SkipReason) Extraction {
	return Extraction{Reason: reason}
}

// Extract decides whether tokens describe a sellable item and, if so,
// recovers its name, quantity and value.
//
// The line is read right to left from its last number; anything printed after
// it, such as a "*" flag, is ignored. The tail is the longest run of numbers,
// unit codes and separators ending at that number. When the tail holds a unit
// code, the name ends at the first one, so sizes printed before the unit
// column ("AGUA 500 ML UN ...") stay in the name; otherwise the whole tail is
// figures. Unit-like words inside the name ("BOLO G CHOCOLATE") are kept.
//
// The value is the last number. The quantity is the number printed with three
// decimals closest to the end, or the one just before the value when no such
// number exists. When a standalone "-" sits in the tail, only the numbers after
// it are quantity/value candidates; the numbers before it are the unit price.
func Extract(tokens []model.Token) Extraction {
	if len(tokens) == 0 || tokens[0].Kind != model.TokenCode {
		return skip(model.ReasonNoCode)
	}

	body := tokens[1:]
	last := lastIndex(body, model.TokenNumeric)
	if last < 0 {
		return skip(model.ReasonNoNumeric)
	}
	body = body[:last+1]

	tailStart := len(body)
	for tailStart > 0 && isTailKind(body[tailStart-1].Kind) {
		tailStart--
	}
	nameEnd := tailStart
	if u := firstIndex(body[tailStart:], model.TokenUnit); u >= 0 {
		nameEnd = tailStart + u
	}
	nameRegion, tail := body[:nameEnd], body[nameEnd:]

	candidates := tailNumbers(tail)
	if len(candidates) < 2 {
		return skip(model.ReasonNoQuantity)
	}

	value := candidates[len(candidates)-1]
	quantity := candidates[len(candidates)-2]
	for i := len(candidates) - 2; i >= 0; i-- {
		if candidates[i].Scale == quantityScale {
			quantity = candidates[i]
			break
		}
	}

	name := productName(nameRegion)
	if name == "" || !hasLetter(name) {
		return skip(model.ReasonNoName)
	}

	if quantity.Value.IsNegative() || value.Value.IsNegative() {
		return skip(model.ReasonNegative)
	}
	if _, err := money.FromDecimal(value.Value.Round(model.ValuePlaces), money.DefaultCurrency); err != nil {
		return skip(model.ReasonOutOfRange)
	}

	return Extraction{
		Item: model.NewLineItem(name, quantity.Value, value.Value),
		OK:   true,
	}
}

// tailNumbers returns the quantity/value candidates of the tail: the numbers
// after the last separator that still has a number after it, or every number
// of the tail when there is no such separator.
func tailNumbers(tail []model.Token) []model.Token {
	var nums []model.Token
	for i, t := range tail {
		switch t.Kind {
		case model.TokenSeparator:
			if hasKind(tail[i+1:], model.TokenNumeric) {
				nums = nums[:0]
			}
		case model.TokenNumeric:
			nums = append(nums, t)
		}
	}
	return nums
}

func productName(region []model.Token) string {
	parts := make([]string, 0, len(region))
	for _, t := range region {
		switch t.Kind {
		case model.TokenSeparator, model.TokenCode:
			continue
		}
		parts = append(parts, t.Raw)
	}

	name := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return strings.TrimSpace(strings.TrimLeft(name, leadingPunct+" "))
}

func isTailKind(k model.TokenKind) bool {
	return k == model.TokenNumeric || k == model.TokenUnit || k == model.TokenSeparator
}

func firstIndex(tokens []model.Token, kind model.TokenKind) int {
	for i, t := range tokens {
		if t.Kind == kind {
			return i
		}
	}
	return -1
}

func lastIndex(tokens []model.Token, kind model.TokenKind) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind == kind {
			return i
		}
	}
	return -1
}

func hasKind(tokens []model.Token, kind model.TokenKind) bool {
	for _, t := range tokens {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
