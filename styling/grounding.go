package styling

import (
	"sort"
	"strings"
)

// Similarity scoring for hint→item resolution. A full name match dominates
// everything else; attribute matches stack underneath it.
const (
	groundScoreNameExact      = 50
	groundScoreNameWord       = 15
	groundScoreColor          = 25
	groundScoreCategory       = 20
	groundScoreItemType       = 20
	groundScoreFabric         = 10
	groundScoreFit            = 10
	groundScoreAestheticTag   = 8
	groundingAcceptThreshold  = 15
	groundingMaxDisplayedItem = 4
)

// categoryLayer is the fixed display stacking order: outerwear in front,
// accessories last.
var categoryLayer = map[Category]int{
	CategoryOuterwear:   1,
	CategoryTops:        2,
	CategoryDresses:     2,
	CategoryEthnic:      2,
	CategoryFormalwear:  2,
	CategorySportswear:  2,
	CategoryBottoms:     3,
	CategoryFootwear:    4,
	CategoryAccessories: 5,
}

// usedItems is the per-outfit exclusion accumulator. It is created inside one
// GroundDraft call and dies with it, never shared across outfits or requests.
type usedItems map[string]bool

// GroundDraft resolves a draft's slot hints against the wardrobe and builds
// the renderable outfit. Only image-bearing items participate, and an item
// resolved for one slot is excluded for the rest of this outfit. Returns
// ok=false when nothing resolves, in which case the outfit must be dropped,
// not rendered empty.
func GroundDraft(d *OutfitDraft, wardrobe []ClassifiedItem) (VisualOutfit, bool) {
	used := usedItems{}
	var resolved []ClassifiedItem

	for _, entry := range d.slotEntries() {
		item, ok := resolveSlot(entry.Item, wardrobe, used)
		if !ok {
			continue
		}
		used[item.ID] = true
		resolved = append(resolved, item)
	}
	if len(resolved) == 0 {
		return VisualOutfit{}, false
	}

	sort.SliceStable(resolved, func(a, b int) bool {
		return layerOf(resolved[a].Category) < layerOf(resolved[b].Category)
	})
	if len(resolved) > groundingMaxDisplayedItem {
		resolved = resolved[:groundingMaxDisplayedItem]
	}

	items := make([]VisualOutfitItem, 0, len(resolved))
	for _, item := range resolved {
		items = append(items, VisualOutfitItem{
			ID:   item.ID,
			Name: item.Name,
			// the storage key; the serving layer swaps in a presigned URL
			ImageURL: item.ImageKey,
			Layer:    layerOf(item.Category),
		})
	}

	return VisualOutfit{
		Title:      d.Title,
		Layout:     layoutFor(len(items)),
		Items:      items,
		WhyItWorks: d.WhyItWorks,
		Occasion:   d.Occasion,
		Vibe:       d.Vibe,
	}, true
}

// GroundAll grounds ranked candidates in order, silently dropping any outfit
// that resolves to zero items.
func GroundAll(candidates []RankedCandidate, wardrobe []ClassifiedItem) []VisualOutfit {
	var outfits []VisualOutfit
	for _, c := range candidates {
		if outfit, ok := GroundDraft(c.Draft, wardrobe); ok {
			outfits = append(outfits, outfit)
		}
	}
	return outfits
}

// resolveSlot picks the best unused, image-bearing wardrobe item for one slot.
// An explicit item id wins outright when it points at a usable item; otherwise
// the hint is scored against every candidate and the best one is accepted only
// above the threshold. Ties keep the earliest wardrobe item, so resolution is
// deterministic for a fixed wardrobe order.
func resolveSlot(slot SlotItem, wardrobe []ClassifiedItem, used usedItems) (ClassifiedItem, bool) {
	if slot.ItemID != "" {
		for _, item := range wardrobe {
			if item.ID == slot.ItemID && item.HasImage && !used[item.ID] {
				return item, true
			}
		}
	}
	if strings.TrimSpace(slot.Hint) == "" {
		return ClassifiedItem{}, false
	}

	best := ClassifiedItem{}
	bestScore := 0
	for _, item := range wardrobe {
		if !item.HasImage || used[item.ID] {
			continue
		}
		score := similarity(slot, item)
		if score > bestScore {
			best = item
			bestScore = score
		}
	}
	if bestScore < groundingAcceptThreshold {
		return ClassifiedItem{}, false
	}
	return best, true
}

// similarity scores how well a wardrobe item matches one slot hint.
func similarity(slot SlotItem, item ClassifiedItem) int {
	hint := strings.ToLower(slot.Hint)
	name := strings.ToLower(item.Name)
	score := 0

	switch {
	case hint != "" && name != "" && (strings.Contains(hint, name) || strings.Contains(name, hint)):
		score += groundScoreNameExact
	default:
		for _, word := range groundingWords(hint) {
			if strings.Contains(name, word) {
				score += groundScoreNameWord
			}
		}
	}

	if item.Color != "" && strings.Contains(hint, item.Color) {
		score += groundScoreColor
	} else if item.ColorFamily != "" && item.ColorFamily != "neutral" && strings.Contains(hint, item.ColorFamily) {
		score += groundScoreColor
	}

	slotCategory := strings.ToLower(slot.Category)
	if item.Category != "" {
		if slotCategory == string(item.Category) || strings.Contains(hint, string(item.Category)) {
			score += groundScoreCategory
		}
	}

	if item.ItemType != "" && strings.Contains(hint, item.ItemType) {
		score += groundScoreItemType
	}
	if item.Fabric != "" && strings.Contains(hint, item.Fabric) {
		score += groundScoreFabric
	}
	if item.Fit != "" && strings.Contains(hint, item.Fit) {
		score += groundScoreFit
	}
	for _, tag := range item.AestheticTags {
		if strings.Contains(hint, tag) {
			score += groundScoreAestheticTag
		}
	}
	return score
}

// groundingWords splits a hint into words of 3+ characters for partial name
// matching.
func groundingWords(hint string) []string {
	var words []string
	for _, w := range strings.Fields(hint) {
		w = strings.Trim(w, ",.;:!?()")
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}

func layerOf(c Category) int {
	if layer, ok := categoryLayer[c]; ok {
		return layer
	}
	return 2
}

// layoutFor picks the display grid by resolved item count.
func layoutFor(count int) string {
	switch {
	case count <= 1:
		return "1x1"
	case count == 2:
		return "2x1"
	case count == 3:
		return "3x1"
	}
	return "2x2"
}
