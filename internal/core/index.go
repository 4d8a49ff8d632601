package core

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BuildIndex derives the distinct countries and years of a record set.
//
// Countries are sorted with the collation rules of tag (byte order breaks
// ties between collation-equal names, so the result is deterministic).
// Years come only from records that have one and are sorted ascending.
// The index is always rebuilt from scratch.
func BuildIndex(records []Record, tag language.Tag) DomainIndex {
	seenCountry := make(map[string]struct{})
	seenYear := make(map[int]struct{})

	idx := DomainIndex{Countries: []string{}, Years: []int{}}
	for _, r := range records {
		if r.Country != "" {
			if _, ok := seenCountry[r.Country]; !ok {
				seenCountry[r.Country] = struct{}{}
				idx.Countries = append(idx.Countries, r.Country)
			}
		}
		if r.HasYear {
			if _, ok := seenYear[r.Year]; !ok {
				seenYear[r.Year] = struct{}{}
				idx.Years = append(idx.Years, r.Year)
			}
		}
	}

	c := collate.New(tag)
	sort.SliceStable(idx.Countries, func(i, j int) bool {
		a, b := idx.Countries[i], idx.Countries[j]
		if cmp := c.CompareString(a, b); cmp != 0 {
			return cmp < 0
		}
		return a < b
	})
	sort.Ints(idx.Years)

	return idx
}
