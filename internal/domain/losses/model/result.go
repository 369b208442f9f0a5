package model

// SkipReason says why the extractor rejected a logical line.
type SkipReason string

const (
	ReasonNoCode     SkipReason = "no_code"
	ReasonNoNumeric  SkipReason = "no_numeric"
	ReasonNoQuantity SkipReason = "no_quantity"
	ReasonNoName     SkipReason = "no_name"
	ReasonNegative   SkipReason = "negative"
	// ReasonOutOfRange marks a value too large to be held in centavos.
	ReasonOutOfRange SkipReason = "out_of_range"
)

// DocumentResult is the outcome of parsing one document.
type DocumentResult struct {
	DocumentID   string
	Name         string
	Index        int
	Items        []LineItem
	LogicalLines int
	EmptyPages   int
	SkipCounts   map[SkipReason]int
	Sections     []string
	// DetectedMonth is MM/YYYY taken from the report period header, if any.
	DetectedMonth string
}

// NoData reports whether the document contributed no items.
func (r DocumentResult) NoData() bool {
	return len(r.Items) == 0
}

// Skipped returns the total number of rejected logical lines.
func (r DocumentResult) Skipped() int {
	total := 0
	for _, n := range r.SkipCounts {
		total += n
	}
	return total
}
