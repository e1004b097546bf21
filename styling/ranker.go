package styling

import (
	"sort"
	"strings"
)

// Combined score weighting between the hard-rule component and the soft score.
const (
	combinedHardWeight = 0.6
	combinedSoftWeight = 0.4
)

// DefaultTopN is how many candidates ranking returns when the caller does
// not ask for a specific count.
const DefaultTopN = 3

// RankedCandidate is one draft that survived evaluation, with everything the
// caller needs to render or explain it.
type RankedCandidate struct {
	Draft *OutfitDraft `json:"draft"`
	// Index is the draft's position in the input batch, also the tie-break.
	Index    int            `json:"index"`
	Hard     HardRuleResult `json:"hard"`
	Soft     SoftScore      `json:"soft"`
	Combined float64        `json:"combined"`
	// Relaxed marks candidates rescued by the demoted second pass.
	Relaxed bool `json:"relaxed,omitempty"`
}

// DescriptionText flattens a draft into the text the soft scorer and the
// aesthetic matcher read.
func (d *OutfitDraft) DescriptionText() string {
	parts := []string{d.Title, d.WhyItWorks, d.Occasion, d.Vibe}
	for _, entry := range d.slotEntries() {
		parts = append(parts, entry.Item.Hint)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// RankCandidates evaluates a batch of drafts and returns the best topN with
// diagnostics. Every draft goes through the hard rules once; if too few pass,
// the blocked ones get a second evaluation at relaxed strictness so marginal
// candidates can be rescued as warns. Sorting is stable and ties break on
// original input order, never on incidental map or slice ordering.
func RankCandidates(drafts []OutfitDraft, ctx RuleContext, cfg RuleConfig, rules []SoftRule, scoreCfg SoftScoreConfig, topN int) ([]RankedCandidate, Diagnostics) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var survivors []RankedCandidate
	var blockedIdx []int
	for i := range drafts {
		hard := EvaluateHardRules(&drafts[i], ctx, cfg)
		if hard.Allowed {
			survivors = append(survivors, RankedCandidate{Draft: &drafts[i], Index: i, Hard: hard})
		} else {
			blockedIdx = append(blockedIdx, i)
		}
	}

	diag := Diagnostics{
		PassedCount:  len(survivors),
		BlockedCount: len(blockedIdx),
	}

	if len(survivors) < topN && len(blockedIdx) > 0 {
		relaxed := cfg
		relaxed.Strictness = StrictnessRelaxed
		for _, i := range blockedIdx {
			hard := EvaluateHardRules(&drafts[i], ctx, relaxed)
			if hard.Allowed {
				survivors = append(survivors, RankedCandidate{Draft: &drafts[i], Index: i, Hard: hard, Relaxed: true})
			}
		}
	}

	if len(survivors) == 0 {
		diag.NeedsFallback = true
		if len(drafts) == 0 {
			diag.FallbackReason = "no candidate drafts supplied"
		} else {
			diag.FallbackReason = "all candidates blocked by hard rules, even at relaxed strictness"
		}
		return nil, diag
	}

	for i := range survivors {
		c := &survivors[i]
		c.Soft = ScoreSoftRules(c.Draft.DescriptionText(), rules, scoreCfg)
		hardComponent := clamp01(1 - c.Hard.ScorePenalty)
		c.Combined = combinedHardWeight*hardComponent + combinedSoftWeight*c.Soft.Score
	}

	sort.SliceStable(survivors, func(a, b int) bool {
		if survivors[a].Combined != survivors[b].Combined {
			return survivors[a].Combined > survivors[b].Combined
		}
		return survivors[a].Index < survivors[b].Index
	})

	if len(survivors) > topN {
		survivors = survivors[:topN]
	}
	return survivors, diag
}
