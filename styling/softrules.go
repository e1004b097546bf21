package styling

import (
	"fmt"
	"math"
	"strings"
)

// Per-source weights for normalized soft rules.
const (
	weightValidPairs      = 0.6
	weightAvoidPairs      = 0.7
	weightCoreDirections  = 0.5
	weightColorRules      = 0.55
	weightSilhouetteRules = 0.45
	weightBodyTypeRules   = 0.5
	weightGenderNotes     = 0.4
)

// SoftScoreConfig carries the scoring constants. They are empirical, so they
// stay named and overridable instead of buried as literals.
type SoftScoreConfig struct {
	// TokenMatchThreshold is the token-overlap fraction above which a rule
	// counts as matched by the outfit text.
	TokenMatchThreshold float64
	// AvoidPenaltyFactor scales the penalty of a matched avoid rule.
	AvoidPenaltyFactor float64
	// NeutralCredit is the partial credit an unmatched prefer rule earns.
	NeutralCredit float64
	// AvoidanceReward is the credit an avoid rule earns when the outfit
	// steers clear of it.
	AvoidanceReward float64
}

func DefaultSoftScoreConfig() SoftScoreConfig {
	return SoftScoreConfig{
		TokenMatchThreshold: 0.3,
		AvoidPenaltyFactor:  0.5,
		NeutralCredit:       0.3,
		AvoidanceReward:     0.8,
	}
}

// PreferenceSet is the raw preference material as it arrives from the
// preference source, one free-text statement list per source category.
type PreferenceSet struct {
	ValidPairs      []string `json:"valid_pairs,omitempty"`
	AvoidPairs      []string `json:"avoid_pairs,omitempty"`
	CoreDirections  []string `json:"core_directions,omitempty"`
	ColorRules      []string `json:"color_rules,omitempty"`
	SilhouetteRules []string `json:"silhouette_rules,omitempty"`
	BodyTypeRules   []string `json:"body_type_rules,omitempty"`
	GenderNotes     []string `json:"gender_notes,omitempty"`
}

var negationMarkers = []string{"avoid", "don't", "dont", "do not", "never", "not "}

// NormalizeSoftRules flattens a preference set into weighted SoftRules.
// Weights are fixed per source category. Color rules written as negations
// ("avoid neon on neon") become avoid rules, everything else in a prefer
// category stays prefer.
func NormalizeSoftRules(p PreferenceSet) []SoftRule {
	var rules []SoftRule

	appendRules := func(source string, statements []string, weight float64, ruleType SoftRuleType, sniffNegation bool) {
		for i, statement := range statements {
			statement = strings.TrimSpace(statement)
			if statement == "" {
				continue
			}
			rt := ruleType
			if sniffNegation && containsAny(statement, negationMarkers) {
				rt = SoftRuleAvoid
			}
			rules = append(rules, SoftRule{
				ID:        fmt.Sprintf("%s_%d", source, i+1),
				Type:      rt,
				Condition: statement,
				Weight:    weight,
			})
		}
	}

	appendRules("valid_pairs", p.ValidPairs, weightValidPairs, SoftRulePrefer, false)
	appendRules("avoid_pairs", p.AvoidPairs, weightAvoidPairs, SoftRuleAvoid, false)
	appendRules("core_directions", p.CoreDirections, weightCoreDirections, SoftRulePrefer, false)
	appendRules("color_rules", p.ColorRules, weightColorRules, SoftRulePrefer, true)
	appendRules("silhouette_rules", p.SilhouetteRules, weightSilhouetteRules, SoftRulePrefer, false)
	appendRules("body_type_rules", p.BodyTypeRules, weightBodyTypeRules, SoftRulePrefer, false)
	appendRules("gender_notes", p.GenderNotes, weightGenderNotes, SoftRulePrefer, false)
	return rules
}

// SoftRuleMatch records one rule that fired against an outfit description.
type SoftRuleMatch struct {
	RuleID    string  `json:"rule_id"`
	Condition string  `json:"condition"`
	Fraction  float64 `json:"fraction"`
}

// SoftScore is the outcome of scoring one outfit description.
type SoftScore struct {
	// Score is earned/total weight, clamped to [0,1]. 0.5 when no rules exist.
	Score      float64         `json:"score"`
	Matched    []SoftRuleMatch `json:"matched,omitempty"`
	Violations []SoftRuleMatch `json:"violations,omitempty"`
}

// ScoreSoftRules scores one outfit description against the rule set.
// A matched prefer rule earns weight*fraction, a matched avoid rule costs
// weight*fraction*AvoidPenaltyFactor and is recorded as a violation. Unmatched
// rules still move the score: prefer rules earn the neutral credit, avoid
// rules earn the avoidance reward.
func ScoreSoftRules(outfitText string, rules []SoftRule, cfg SoftScoreConfig) SoftScore {
	if len(rules) == 0 {
		return SoftScore{Score: 0.5}
	}

	text := strings.ToLower(outfitText)
	earned := 0.0
	total := 0.0
	result := SoftScore{}

	for _, rule := range rules {
		total += rule.Weight
		fraction := tokenOverlap(rule.Condition, text)
		matched := fraction > cfg.TokenMatchThreshold

		switch {
		case matched && rule.Type == SoftRulePrefer:
			earned += rule.Weight * fraction
			result.Matched = append(result.Matched, SoftRuleMatch{rule.ID, rule.Condition, fraction})
		case matched && rule.Type == SoftRuleAvoid:
			earned -= rule.Weight * fraction * cfg.AvoidPenaltyFactor
			result.Violations = append(result.Violations, SoftRuleMatch{rule.ID, rule.Condition, fraction})
		case rule.Type == SoftRulePrefer:
			earned += rule.Weight * cfg.NeutralCredit
		default:
			earned += rule.Weight * cfg.AvoidanceReward
		}
	}

	result.Score = clamp01(earned / total)
	return result
}

// tokenOverlap is the fraction of the condition's significant tokens (longer
// than 3 characters) present in the outfit text. A condition with no
// significant tokens overlaps nothing.
func tokenOverlap(condition, loweredText string) float64 {
	tokens := significantTokens(condition)
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, token := range tokens {
		if strings.Contains(loweredText, token) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

func significantTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '-'
	})
	var tokens []string
	for _, f := range fields {
		if len(f) > 3 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// aestheticKeywords maps each known aesthetic to the vocabulary that signals
// it when the aesthetic name itself is not spelled out.
var aestheticKeywords = map[string][]string{
	"streetwear": {"sneaker", "hoodie", "graphic", "cargo", "oversized", "baggy", "urban"},
	"minimal":    {"clean", "simple", "monochrome", "neutral", "plain", "understated"},
	"preppy":     {"polo", "chino", "loafer", "oxford", "pleated", "collegiate"},
	"old money":  {"linen", "tailored", "loafer", "blazer", "quiet", "heritage"},
	"boho":       {"flowy", "floral", "fringe", "earthy", "layered", "printed"},
	"sporty":     {"athletic", "jersey", "track", "running", "gym", "active"},
	"classic":    {"timeless", "tailored", "crisp", "structured", "elegant"},
	"grunge":     {"flannel", "ripped", "distressed", "plaid", "combat"},
	"y2k":        {"low-rise", "baby tee", "metallic", "butterfly", "rhinestone"},
	"edgy":       {"leather", "black", "studded", "moto", "chunky"},
}

// ScoreAestheticAlignment compares an outfit description to the user's target
// aesthetics. A direct mention of the aesthetic name counts 1.0, a vocabulary
// hit counts 0.5. Returns matches/targets, 0.5 when no targets are given.
func ScoreAestheticAlignment(outfitText string, targets []string) float64 {
	if len(targets) == 0 {
		return 0.5
	}
	text := strings.ToLower(outfitText)
	score := 0.0
	for _, target := range targets {
		name := strings.ToLower(strings.TrimSpace(target))
		if name == "" {
			continue
		}
		if strings.Contains(text, name) {
			score += 1.0
			continue
		}
		if containsAny(text, aestheticKeywords[name]) {
			score += 0.5
		}
	}
	return clamp01(score / float64(len(targets)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
