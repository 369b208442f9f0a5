// Package model holds the data types shared by the loss-report pipeline:
// raw and logical lines, classified tokens, extracted items, and the
// aggregated records handed to the spreadsheet writers.
package model

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/lince-perdas/pkg/money"
)

// Decimal places the report uses for each numeric column.
const (
	QuantityPlaces = 3
	ValuePlaces    = 2
)

// PageText is the extracted text of one page. Text is nil when extraction
// failed for that page.
type PageText struct {
	Index int
	Text  *string
}

// Document is one uploaded report, already turned into per-page text.
type Document struct {
	ID    string
	Name  string
	Pages []PageText
}

// TextPage is a helper for building documents from plain strings.
func TextPage(index int, text string) PageText {
	return PageText{Index: index, Text: &text}
}

// RawLine is a normalized physical line of a page.
type RawLine struct {
	Text     string
	Page     int
	Document int
	// Section is the department banner in effect when the line was read.
	Section string
}

// LogicalLine is one or two RawLines merged into a single parseable unit.
type LogicalLine struct {
	Text    string
	Page    int
	Parts   int
	Section string
}

// Fields splits the line into whitespace-separated tokens.
func (l LogicalLine) Fields() []string {
	return strings.Fields(l.Text)
}

// TokenKind is the closed set of token classifications.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenCode
	TokenNumeric
	TokenUnit
	TokenSeparator
)

func (k TokenKind) String() string {
	switch k {
	case TokenCode:
		return "code"
	case TokenNumeric:
		return "numeric"
	case TokenUnit:
		return "unit"
	case TokenSeparator:
		return "separator"
	default:
		return "text"
	}
}

// Token is a classified substring of a logical line. Value and Scale are only
// meaningful for TokenNumeric.
type Token struct {
	Raw   string
	Kind  TokenKind
	Value decimal.Decimal
	Scale int
}

// LineItem is the triple recovered from one accepted logical line.
type LineItem struct {
	Product  string
	Quantity decimal.Decimal
	Value    *money.Money
	// Section is the department banner the line was printed under, if any.
	Section string
}

// NewLineItem rounds quantity and value to the report precision.
func NewLineItem(product string, quantity, value decimal.Decimal) LineItem {
	return LineItem{
		Product:  product,
		Quantity: quantity.Round(QuantityPlaces),
		Value:    money.NewFromDecimal(value.Round(ValuePlaces), money.DefaultCurrency),
	}
}

// AggregateRecord is the running sum of every LineItem sharing a product key.
// Section is only set when records were grouped per section.
type AggregateRecord struct {
	Product  string
	Quantity decimal.Decimal
	Value    *money.Money
	Section  string
}

// AsLineItem lets an aggregated record be fed back into an aggregator.
func (r AggregateRecord) AsLineItem() LineItem {
	return LineItem{Product: r.Product, Quantity: r.Quantity, Value: r.Value, Section: r.Section}
}

// BatchMetadata is supplied once per batch by the caller.
type BatchMetadata struct {
	Sector string
	Month  string
	Week   string
}

// Row is one line of the output sheet: an aggregated record stamped with the
// batch metadata.
type Row struct {
	Product  string
	Sector   string
	Month    string
	Week     string
	Quantity decimal.Decimal
	Value    *money.Money
}
