package config

import "fmt"

func fieldf(list string, idx int) string {
	return fmt.Sprintf("%s[%d]", list, idx)
}

// SortSlabs puts a LumpsumConfig's slab lists into the canonical order
// required for slab-walking (spec.md §3.7 invariant: "slabs are stored in
// natural order in the document but must be sorted before use").
func (c *LumpsumConfig) SortSlabs() {
	sortRateSlabsAsc(c.RateSlabs)
	sortMeetingSlabsAsc(c.MeetingSlabs)
	sortBonusSlabsAsc(c.QtrBonusSlabs)
	sortBonusSlabsAsc(c.AnnualBonusSlabs)
}

func sortRateSlabsAsc(s []RateSlab) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].MinPct < s[j-1].MinPct; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func sortMeetingSlabsAsc(s []MeetingSlab) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && lessMaxCount(s[j].MaxCount, s[j-1].MaxCount); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func lessMaxCount(a, b *int) bool {
	if a == nil {
		return false // nil (open-ended) sorts last
	}
	if b == nil {
		return true
	}
	return *a < *b
}

func sortBonusSlabsAsc(s []BonusProjectionSlab) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].MinNP < s[j-1].MinNP; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
