package aggregate

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// SimilarPair is two aggregated products whose names look like spellings of
// the same thing.
type SimilarPair struct {
	A        string
	B        string
	Distance int
}

// SimilarNames lists pairs of products that stayed separate but probably
// should not have: equal after case and accent folding, or within
// maxDistance edits of each other. Records of different sections are never
// compared. It only reports; nothing is merged.
func SimilarNames(records []model.AggregateRecord, maxDistance int) []SimilarPair {
	var pairs []SimilarPair

	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = FoldKey(r.Product)
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if records[i].Section != records[j].Section {
				continue
			}
			dist := fuzzy.LevenshteinDistance(keys[i], keys[j])
			if dist == 0 || (maxDistance > 0 && dist <= maxDistance) {
				pairs = append(pairs, SimilarPair{
					A:        records[i].Product,
					B:        records[j].Product,
					Distance: dist,
				})
			}
		}
	}

	return pairs
}
