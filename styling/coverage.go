package styling

// Coverage thresholds by per-category count. Monotonic: none < low < medium < high.
const (
	coverageLowThreshold    = 1
	coverageMediumThreshold = 3
	coverageHighThreshold   = 5
)

func coverageLevel(count int) CoverageLevel {
	switch {
	case count >= coverageHighThreshold:
		return CoverageHigh
	case count >= coverageMediumThreshold:
		return CoverageMedium
	case count >= coverageLowThreshold:
		return CoverageLow
	}
	return CoverageNone
}

// BuildCoverageProfile aggregates classified items into slot availability.
// There is no failure mode here: an empty wardrobe yields all-zero buckets
// and CanCreateComplete=false.
func BuildCoverageProfile(items []ClassifiedItem) CoverageProfile {
	categories := make(map[Category]CategoryCoverage, len(AllCategories))
	counts := make(map[Category]int, len(AllCategories))
	withImages := make(map[Category]int, len(AllCategories))

	for _, item := range items {
		counts[item.Category]++
		if item.HasImage {
			withImages[item.Category]++
		}
	}
	for _, cat := range AllCategories {
		categories[cat] = CategoryCoverage{
			Count:      counts[cat],
			WithImages: withImages[cat],
			Level:      coverageLevel(counts[cat]),
		}
	}

	tops := counts[CategoryTops]
	bottoms := counts[CategoryBottoms]
	footwear := counts[CategoryFootwear]
	dresses := counts[CategoryDresses]

	var available []OutfitSlot
	if tops > 0 || dresses > 0 {
		available = append(available, SlotUpperWear)
	}
	if bottoms > 0 || dresses > 0 {
		available = append(available, SlotLowerWear)
	}
	if footwear > 0 {
		available = append(available, SlotFootwear)
	}
	if counts[CategoryOuterwear] > 0 {
		available = append(available, SlotLayering)
	}
	if counts[CategoryAccessories] > 0 {
		available = append(available, SlotAccessories)
	}

	// Dresses stand in for tops and bottoms, never for footwear.
	var missing []OutfitSlot
	if tops == 0 && dresses == 0 {
		missing = append(missing, SlotUpperWear)
	}
	if bottoms == 0 && dresses == 0 {
		missing = append(missing, SlotLowerWear)
	}
	if footwear == 0 {
		missing = append(missing, SlotFootwear)
	}

	return CoverageProfile{
		Categories:            categories,
		AvailableSlots:        available,
		MissingMandatorySlots: missing,
		CanCreateComplete:     len(missing) == 0,
	}
}
