package styling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftBatch() []OutfitDraft {
	clean := basicDraft()
	clean.ID = "clean"

	warned := basicDraft()
	warned.ID = "warned"
	warned.Layering = &SlotItem{Hint: "heavy puffer jacket"}

	blocked := basicDraft()
	blocked.ID = "blocked"
	blocked.Upper = &SlotItem{Hint: "formal dress shirt", Formality: "formal"}
	blocked.Footwear = &SlotItem{Hint: "rubber slides", Subcategory: "slides"}

	return []OutfitDraft{clean, warned, blocked}
}

func TestRankCandidatesOrdersByCombinedScore(t *testing.T) {
	drafts := draftBatch()
	ctx := RuleContext{Climate: "hot"}

	ranked, diag := RankCandidates(drafts, ctx, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "clean", ranked[0].Draft.ID)
	assert.Equal(t, "warned", ranked[1].Draft.ID)
	assert.Greater(t, ranked[0].Combined, ranked[1].Combined)
	assert.Equal(t, 2, diag.PassedCount)
	assert.Equal(t, 1, diag.BlockedCount)
	assert.False(t, diag.NeedsFallback)
}

func TestRankCandidatesDeterministic(t *testing.T) {
	ctx := RuleContext{Climate: "hot"}
	rules := NormalizeSoftRules(PreferenceSet{ValidPairs: []string{"white tshirt with blue jeans"}})

	firstRun, _ := RankCandidates(draftBatch(), ctx, DefaultRuleConfig(), rules, DefaultSoftScoreConfig(), 3)
	for i := 0; i < 5; i++ {
		run, _ := RankCandidates(draftBatch(), ctx, DefaultRuleConfig(), rules, DefaultSoftScoreConfig(), 3)
		require.Len(t, run, len(firstRun))
		for j := range run {
			assert.Equal(t, firstRun[j].Draft.ID, run[j].Draft.ID)
			assert.Equal(t, firstRun[j].Combined, run[j].Combined)
		}
	}
}

func TestRankCandidatesTieBreakByInputOrder(t *testing.T) {
	a := basicDraft()
	a.ID = "first"
	b := basicDraft()
	b.ID = "second"

	ranked, _ := RankCandidates([]OutfitDraft{a, b}, RuleContext{}, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Combined, ranked[1].Combined)
	assert.Equal(t, "first", ranked[0].Draft.ID)
	assert.Equal(t, "second", ranked[1].Draft.ID)
}

func TestRankCandidatesRelaxedRescue(t *testing.T) {
	blocked := basicDraft()
	blocked.ID = "rescuable"
	blocked.Upper = &SlotItem{Hint: "formal shirt", Formality: "formal"}
	blocked.Footwear = &SlotItem{Hint: "sandals", Subcategory: "sandals"}

	ranked, diag := RankCandidates([]OutfitDraft{blocked}, RuleContext{}, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 3)
	require.Len(t, ranked, 1)
	assert.True(t, ranked[0].Relaxed)
	assert.Equal(t, 0, diag.PassedCount)
	assert.Equal(t, 1, diag.BlockedCount)
	assert.False(t, diag.NeedsFallback)
	// rescued candidates carry the demoted penalties in their score
	assert.Greater(t, ranked[0].Hard.ScorePenalty, 0.0)
}

func TestRankCandidatesFallbackWhenNothingSurvives(t *testing.T) {
	hopeless := OutfitDraft{ID: "hopeless", Upper: &SlotItem{Hint: "shirt"}}

	ranked, diag := RankCandidates([]OutfitDraft{hopeless}, RuleContext{}, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 3)
	assert.Empty(t, ranked)
	assert.True(t, diag.NeedsFallback)
	assert.NotEmpty(t, diag.FallbackReason)
}

func TestRankCandidatesEmptyBatch(t *testing.T) {
	ranked, diag := RankCandidates(nil, RuleContext{}, DefaultRuleConfig(), nil, DefaultSoftScoreConfig(), 3)
	assert.Empty(t, ranked)
	assert.True(t, diag.NeedsFallback)
	assert.Equal(t, "no candidate drafts supplied", diag.FallbackReason)
}

func TestRankCandidatesSoftRulesShiftOrder(t *testing.T) {
	plain := basicDraft()
	plain.ID = "plain"
	plain.Title = "Plain Basics"

	street := basicDraft()
	street.ID = "street"
	street.Title = "Streetwear Cargo Hoodie Look"
	street.Upper = &SlotItem{Hint: "oversized graphic hoodie"}

	rules := NormalizeSoftRules(PreferenceSet{
		CoreDirections: []string{"streetwear hoodie cargo graphic look"},
	})

	ranked, _ := RankCandidates([]OutfitDraft{plain, street}, RuleContext{}, DefaultRuleConfig(), rules, DefaultSoftScoreConfig(), 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "street", ranked[0].Draft.ID)
}

func TestDescriptionTextGathersSlotHints(t *testing.T) {
	draft := basicDraft()
	draft.Vibe = "Relaxed Weekend"
	text := draft.DescriptionText()
	assert.Contains(t, text, "white t-shirt")
	assert.Contains(t, text, "blue jeans")
	assert.Contains(t, text, "relaxed weekend")
}
