// Package testdata generates synthetic loss reports for tests.
package testdata

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// Generator produces reproducible report fixtures.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator. A seed of 0 is random.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Faker exposes the underlying faker for ad-hoc values.
func (g *Generator) Faker() *gofakeit.Faker {
	return g.faker
}

// ============================================================================
// Line items
// ============================================================================

var products = []string{
	"PAO FRANCES", "PAO DE QUEIJO", "SANDUICHE A METRO", "BOLO DE CENOURA",
	"ROSCA DOCE", "CROISSANT PRESUNTO", "SONHO CREME", "PAO INTEGRAL",
	"TORTA DE FRANGO", "COXINHA", "PASTEL DE CARNE", "BAGUETE",
	"QUEIJO MUSSARELA", "PRESUNTO COZIDO", "MORTADELA", "SALAME ITALIANO",
	"BANANA PRATA", "TOMATE ITALIANO", "ALFACE CRESPA", "MACA GALA",
	"IOGURTE MORANGO", "LEITE INTEGRAL", "REFRIG COLA", "SUCO DE LARANJA",
}

var units = []string{"UN", "KG", "PCT", "CX", "LT"}

// Product returns a product name from a fixed catalogue.
func (g *Generator) Product() string {
	return products[g.faker.IntRange(0, len(products)-1)]
}

// Code returns a six-digit product code.
func (g *Generator) Code() string {
	return fmt.Sprintf("%06d", g.faker.IntRange(1, 999999))
}

// Quantity returns a quantity with three decimals between 0.001 and 50.000.
func (g *Generator) Quantity() decimal.Decimal {
	return decimal.New(int64(g.faker.IntRange(1, 50000)), -3)
}

// Value returns a value with two decimals between 0.01 and 9999.99.
func (g *Generator) Value() decimal.Decimal {
	return decimal.New(int64(g.faker.IntRange(1, 999999)), -2)
}

// LineItem returns a random item as the extractor would produce it.
func (g *Generator) LineItem() model.LineItem {
	return model.NewLineItem(g.Product(), g.Quantity(), g.Value())
}

// LineItems returns count random items.
func (g *Generator) LineItems(count int) []model.LineItem {
	items := make([]model.LineItem, count)
	for i := range items {
		items[i] = g.LineItem()
	}
	return items
}

// Shuffle returns a shuffled copy of items.
func (g *Generator) Shuffle(items []model.LineItem) []model.LineItem {
	out := append([]model.LineItem(nil), items...)
	for i := len(out) - 1; i > 0; i-- {
		j := g.faker.IntRange(0, i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ============================================================================
// Report text
// ============================================================================

// ReportLine renders item the way the report prints it:
// code, name, unit, unit price, "-", quantity, value.
func (g *Generator) ReportLine(item model.LineItem) string {
	unit := units[g.faker.IntRange(0, len(units)-1)]
	price := item.Value.ToDecimal()
	if !item.Quantity.IsZero() {
		price = price.Div(item.Quantity).Round(2)
	}
	return strings.Join([]string{
		g.Code(),
		item.Product,
		unit,
		FormatBR(price, 2),
		"-",
		FormatBR(item.Quantity, model.QuantityPlaces),
		FormatBR(item.Value.ToDecimal(), model.ValuePlaces),
	}, " ")
}

// Page renders a full report page: header, period, section banner, items,
// section total and footer.
func (g *Generator) Page(section string, pageNo int, items []model.LineItem) string {
	var b strings.Builder
	b.WriteString("Lince - Perdas por Departamento\n")
	b.WriteString("Período: 01/03/2024 a 31/03/2024\n")
	b.WriteString("Código Descrição Un Preço Qtde Valor\n")
	fmt.Fprintf(&b, "%04d %s -\n", g.faker.IntRange(1, 9999), section)
	for _, item := range items {
		b.WriteString(g.ReportLine(item))
		b.WriteByte('\n')
	}
	b.WriteString("Total Setor " + FormatBR(decimal.NewFromInt(int64(len(items))), 2) + "\n")
	fmt.Fprintf(&b, "Página %d\n", pageNo)
	return b.String()
}

// Document renders items over pages of at most perPage lines.
func (g *Generator) Document(name, section string, items []model.LineItem, perPage int) model.Document {
	if perPage <= 0 {
		perPage = len(items)
	}
	doc := model.Document{ID: g.faker.UUID(), Name: name}
	for start, page := 0, 0; start < len(items) || page == 0; page++ {
		end := min(start+perPage, len(items))
		doc.Pages = append(doc.Pages, model.TextPage(page, g.Page(section, page+1, items[start:end])))
		start = end
	}
	return doc
}

// FormatBR prints d with places decimals in Brazilian notation
// ("1.234,567").
func FormatBR(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	out := strings.Join(grouped, ".")
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
