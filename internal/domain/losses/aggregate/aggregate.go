// Package aggregate sums loss-report line items by product.
//
// Items are accumulated per document and then merged across the batch.
// Quantities are summed as decimals and values as integer centavos, so the
// totals do not depend on the order in which items arrive. Records come out
// sorted by value, highest first, with ties kept in first-seen order.
package aggregate

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
	"github.com/FACorreiaa/lince-perdas/pkg/money"
)

// KeyPolicy maps a product name to its grouping key.
type KeyPolicy func(product string) string

// ExactKey groups only identical spellings.
func ExactKey(product string) string {
	return product
}

// FoldKey groups names that differ only in case, accents or spacing
// ("Pão  francês" and "PAO FRANCES").
func FoldKey(product string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, product)
	if err != nil {
		folded = product
	}
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}

// PolicyByName resolves "exact" or "fold"; anything else is exact.
func PolicyByName(name string) KeyPolicy {
	if strings.EqualFold(strings.TrimSpace(name), "fold") {
		return FoldKey
	}
	return ExactKey
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithKeyPolicy sets the grouping policy (default ExactKey).
func WithKeyPolicy(policy KeyPolicy) Option {
	return func(a *Accumulator) {
		if policy != nil {
			a.key = policy
		}
	}
}

// BySection keeps the same product apart when it appears under different
// department sections, and reports the section on each record.
func BySection() Option {
	return func(a *Accumulator) {
		a.bySection = true
	}
}

type entry struct {
	product  string
	section  string
	quantity decimal.Decimal
	value    *money.Money
}

// Accumulator holds running sums keyed by product. It is not safe for
// concurrent use; give each worker its own and Merge them in a fixed order.
type Accumulator struct {
	key       KeyPolicy
	bySection bool
	index     map[string]int
	entries   []entry
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator(opts ...Option) *Accumulator {
	a := &Accumulator{
		key:   ExactKey,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add folds one item into the sums. The first spelling seen for a key is the
// one reported.
func (a *Accumulator) Add(item model.LineItem) {
	k := a.key(item.Product)
	section := ""
	if a.bySection {
		section = item.Section
		k = section + "\x00" + k
	}

	if i, ok := a.index[k]; ok {
		e := &a.entries[i]
		e.quantity = e.quantity.Add(item.Quantity)
		e.value = e.value.MustAdd(item.Value)
		return
	}

	a.index[k] = len(a.entries)
	a.entries = append(a.entries, entry{
		product:  item.Product,
		section:  section,
		quantity: item.Quantity,
		value:    money.Zero(money.DefaultCurrency).MustAdd(item.Value),
	})
}

// AddAll adds items in order.
func (a *Accumulator) AddAll(items []model.LineItem) {
	for _, item := range items {
		a.Add(item)
	}
}

// Merge adds every entry of other, in other's first-seen order.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		a.Add(model.LineItem{Product: e.product, Quantity: e.quantity, Value: e.value, Section: e.section})
	}
}

// Len returns the number of distinct keys.
func (a *Accumulator) Len() int {
	return len(a.entries)
}

// Records returns the sums sorted by value descending. Ties keep first-seen
// order.
func (a *Accumulator) Records() []model.AggregateRecord {
	records := make([]model.AggregateRecord, len(a.entries))
	for i, e := range a.entries {
		records[i] = model.AggregateRecord{
			Product:  e.product,
			Quantity: e.quantity.Round(model.QuantityPlaces),
			Value:    e.value,
			Section:  e.section,
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Value.Compare(records[j].Value) > 0
	})

	return records
}

// Aggregate sums items in one pass.
func Aggregate(items []model.LineItem, opts ...Option) []model.AggregateRecord {
	a := NewAccumulator(opts...)
	a.AddAll(items)
	return a.Records()
}

// Totals returns the grand total quantity and value of records.
func Totals(records []model.AggregateRecord) (decimal.Decimal, *money.Money) {
	qty := decimal.Zero
	value := money.Zero(money.DefaultCurrency)
	for _, r := range records {
		qty = qty.Add(r.Quantity)
		value = value.MustAdd(r.Value)
	}
	return qty, value
}
