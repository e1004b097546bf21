package styling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndCasualOutfit(t *testing.T) {
	records := []WardrobeRecord{
		{ID: "t1", Name: "White T-Shirt", Category: "t-shirt", Color: "white", ImageKey: "items/t1.jpg"},
		{ID: "b1", Name: "Blue Jeans", Category: "jeans", Color: "blue", ImageKey: "items/b1.jpg"},
		{ID: "f1", Name: "White Sneakers", Category: "sneakers", Color: "white", ImageKey: "items/f1.jpg"},
	}
	items := ClassifyAll(records)
	profile := BuildCoverageProfile(items)
	require.True(t, profile.CanCreateComplete)
	require.Empty(t, profile.MissingMandatorySlots)

	drafts := []OutfitDraft{{
		ID:       "d1",
		Title:    "Clean Casual",
		Upper:    &SlotItem{Hint: "white t-shirt"},
		Lower:    &SlotItem{Hint: "blue jeans"},
		Footwear: &SlotItem{Hint: "white sneakers"},
	}}
	ctx := RuleContext{ResponseMode: "visual_outfit", HasWardrobeItems: true}

	ranked, diag := RankCandidates(drafts, ctx, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 3)
	require.Len(t, ranked, 1)
	assert.True(t, ranked[0].Hard.Allowed)
	assert.Equal(t, 1, diag.PassedCount)
	assert.Equal(t, 0, diag.BlockedCount)

	outfits := GroundAll(ranked, items)
	require.Len(t, outfits, 1)
	assert.Len(t, outfits[0].Items, 3)
	assert.Equal(t, "3x1", outfits[0].Layout)
	assert.Equal(t, "Clean Casual", outfits[0].Title)
}

func TestEndToEndNoFootwearWardrobe(t *testing.T) {
	records := []WardrobeRecord{
		{ID: "t1", Name: "Black Polo", Category: "polo", ImageKey: "items/t1.jpg"},
		{ID: "b1", Name: "Grey Chinos", Category: "chino", ImageKey: "items/b1.jpg"},
	}
	items := ClassifyAll(records)
	profile := BuildCoverageProfile(items)

	assert.Equal(t, []OutfitSlot{SlotFootwear}, profile.MissingMandatorySlots)
	assert.False(t, profile.CanCreateComplete)

	// the generator reacting to the coverage gap leaves footwear out, and the
	// hard rules block that draft
	drafts := []OutfitDraft{{
		ID:    "d1",
		Upper: &SlotItem{Hint: "black polo"},
		Lower: &SlotItem{Hint: "grey chinos"},
	}}
	ranked, diag := RankCandidates(drafts, RuleContext{}, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 3)
	assert.Empty(t, ranked)
	assert.True(t, diag.NeedsFallback)
	assert.Equal(t, 1, diag.BlockedCount)
}

func TestEndToEndRelaxedCandidateStillGrounds(t *testing.T) {
	records := []WardrobeRecord{
		{ID: "s1", Name: "Formal White Shirt", Category: "shirt", Formality: "formal", ImageKey: "items/s1.jpg"},
		{ID: "b1", Name: "Black Trousers", Category: "trouser", ImageKey: "items/b1.jpg"},
		{ID: "f1", Name: "Tan Sandals", Category: "sandals", ImageKey: "items/f1.jpg"},
	}
	items := ClassifyAll(records)

	drafts := []OutfitDraft{{
		ID:       "d1",
		Title:    "Loose Friday",
		Upper:    &SlotItem{Hint: "formal white shirt", Formality: "formal"},
		Lower:    &SlotItem{Hint: "black trousers"},
		Footwear: &SlotItem{Hint: "tan sandals", Subcategory: "sandals"},
	}}
	ranked, diag := RankCandidates(drafts, RuleContext{}, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 3)
	require.Len(t, ranked, 1)
	assert.True(t, ranked[0].Relaxed)
	assert.False(t, diag.NeedsFallback)

	outfits := GroundAll(ranked, items)
	require.Len(t, outfits, 1)
	assert.Len(t, outfits[0].Items, 3)
}
