package styling

import (
	"fmt"
	"strings"
)

// Warn-path penalties. Blocks are terminal and carry a penalty only so the
// relaxed pass can demote them into meaningful warns.
const (
	penaltyFormalityGap      = 0.2
	penaltySilhouetteClash   = 0.15
	penaltySilhouetteStrict  = 0.5
	penaltyClimateHotLayer   = 0.25
	penaltyClimateColdUpper  = 0.1
	penaltyMissingSlotHints  = 0.1
	penaltyRelaxedBlockedFml = 0.4
	penaltyRelaxedEthnic     = 0.4
)

// Hard rule ids, usable in RuleConfig.Disabled.
const (
	RuleMandatorySlots       = "mandatory_slots"
	RuleFormalityCoherence   = "formality_coherence"
	RuleSilhouetteBalance    = "silhouette_balance"
	RuleEthnicCoherence      = "ethnic_coherence"
	RuleClimateSanity        = "climate_sanity"
	RuleDuplicateItems       = "duplicate_items"
	RuleWardrobeAvailability = "wardrobe_availability"
)

type hardRule struct {
	ID    string
	Check func(d *OutfitDraft, ctx RuleContext, cfg RuleConfig) []RuleViolation
}

// hardRules run independently, no short-circuit, violations accumulate.
var hardRules = []hardRule{
	{RuleMandatorySlots, checkMandatorySlots},
	{RuleFormalityCoherence, checkFormalityCoherence},
	{RuleSilhouetteBalance, checkSilhouetteBalance},
	{RuleEthnicCoherence, checkEthnicCoherence},
	{RuleClimateSanity, checkClimateSanity},
	{RuleDuplicateItems, checkDuplicateItems},
	{RuleWardrobeAvailability, checkWardrobeAvailability},
}

// EvaluateHardRules runs the full rule set over one draft. Pure: identical
// inputs always produce identical results. A draft with malformed or missing
// slots is never an error, it just collects violations.
func EvaluateHardRules(d *OutfitDraft, ctx RuleContext, cfg RuleConfig) HardRuleResult {
	var violations []RuleViolation
	for _, rule := range hardRules {
		if !cfg.enabled(rule.ID) {
			continue
		}
		violations = append(violations, rule.Check(d, ctx, cfg)...)
	}

	allowed := true
	penalty := 0.0
	for _, v := range violations {
		switch v.Severity {
		case SeverityBlock:
			allowed = false
		case SeverityWarn:
			penalty += v.Penalty
		}
	}
	return HardRuleResult{
		Allowed:      allowed,
		Violations:   violations,
		ScorePenalty: penalty,
	}
}

// relaxableBlock demotes a block to warn under relaxed strictness. The
// rescue pass is this severity switch, not a second evaluation path.
func relaxableBlock(cfg RuleConfig, demotedPenalty float64) (Severity, float64) {
	if cfg.Strictness == StrictnessRelaxed {
		return SeverityWarn, demotedPenalty
	}
	return SeverityBlock, demotedPenalty
}

// UpperIsDress reports whether the draft's upper slot is a one-piece that
// covers both upper and lower wear.
func UpperIsDress(d *OutfitDraft) bool {
	if d.Upper == nil {
		return false
	}
	if contains(d.Upper.Category, "dress") || contains(d.Upper.Subcategory, "dress") || contains(d.Upper.Subcategory, "jumpsuit") {
		return true
	}
	return contains(d.Upper.Hint, "dress") || contains(d.Upper.Hint, "jumpsuit")
}

func checkMandatorySlots(d *OutfitDraft, _ RuleContext, _ RuleConfig) []RuleViolation {
	var missing []OutfitSlot
	if d.Upper == nil {
		missing = append(missing, SlotUpperWear)
	}
	if d.Footwear == nil {
		missing = append(missing, SlotFootwear)
	}
	// a dress or jumpsuit fills the lower slot too
	if d.Lower == nil && !UpperIsDress(d) {
		missing = append(missing, SlotLowerWear)
	}
	if len(missing) == 0 {
		return nil
	}
	// never demoted: an outfit without its base pieces is not rescuable
	return []RuleViolation{{
		RuleID:   RuleMandatorySlots,
		Severity: SeverityBlock,
		Message:  fmt.Sprintf("outfit is missing required slots: %s", joinSlots(missing)),
		Slots:    missing,
	}}
}

var casualFootwearSubcats = []string{"flip-flops", "flip flops", "flipflops", "slides", "sandals", "sandal"}
var gymwearMarkers = []string{"gym", "sport", "track", "athletic", "workout", "running", "jersey", "training"}

func checkFormalityCoherence(d *OutfitDraft, ctx RuleContext, cfg RuleConfig) []RuleViolation {
	var violations []RuleViolation

	upperFml, upperKnown := slotFormality(d.Upper)
	footSub := slotText(d.Footwear)

	if upperKnown && (upperFml == FormalityFormal || upperFml == FormalitySmart) && containsAny(footSub, casualFootwearSubcats) {
		sev, pen := relaxableBlock(cfg, penaltyRelaxedBlockedFml)
		violations = append(violations, RuleViolation{
			RuleID:   RuleFormalityCoherence,
			Severity: sev,
			Message:  "formal or smart upper wear clashes with beach footwear",
			Slots:    []OutfitSlot{SlotUpperWear, SlotFootwear},
			Evidence: footSub,
			Penalty:  pen,
		})
	}

	if strings.EqualFold(ctx.Formality, "formal") && containsAny(slotText(d.Lower), gymwearMarkers) {
		sev, pen := relaxableBlock(cfg, penaltyRelaxedBlockedFml)
		violations = append(violations, RuleViolation{
			RuleID:   RuleFormalityCoherence,
			Severity: sev,
			Message:  "gym or sports bottoms do not fit a formal occasion",
			Slots:    []OutfitSlot{SlotLowerWear},
			Penalty:  pen,
		})
	}

	// adjacency only: casual next to smart-casual is fine, casual next to
	// smart is not, even though the pair is never enumerated anywhere
	footFml, footKnown := slotFormality(d.Footwear)
	if upperKnown && footKnown && !upperFml.Adjacent(footFml) {
		violations = append(violations, RuleViolation{
			RuleID:   RuleFormalityCoherence,
			Severity: SeverityWarn,
			Message:  fmt.Sprintf("upper formality %q and footwear formality %q are more than one step apart", upperFml, footFml),
			Slots:    []OutfitSlot{SlotUpperWear, SlotFootwear},
			Penalty:  penaltyFormalityGap,
		})
	}
	return violations
}

func checkSilhouetteBalance(d *OutfitDraft, _ RuleContext, cfg RuleConfig) []RuleViolation {
	upper := slotSilhouette(d.Upper)
	lower := slotSilhouette(d.Lower)

	upperHeavy := upper == SilhouetteLongline || upper == SilhouetteOversized
	lowerHeavy := lower == SilhouetteOversized || lower == SilhouetteRelaxed
	if !upperHeavy || !lowerHeavy {
		return nil
	}

	severity := SeverityWarn
	penalty := penaltySilhouetteClash
	if cfg.Strictness == StrictnessStrict {
		severity = SeverityBlock
		penalty = penaltySilhouetteStrict
	}
	return []RuleViolation{{
		RuleID:   RuleSilhouetteBalance,
		Severity: severity,
		Message:  fmt.Sprintf("volume on volume: %s upper over %s lower", upper, lower),
		Slots:    []OutfitSlot{SlotUpperWear, SlotLowerWear},
		Penalty:  penalty,
	}}
}

func checkEthnicCoherence(d *OutfitDraft, _ RuleContext, cfg RuleConfig) []RuleViolation {
	if d.Upper == nil || d.Lower == nil {
		return nil
	}
	upperEthnic := contains(d.Upper.Category, "ethnic") || containsAny(d.Upper.Hint, ethnicMarkers)
	if !upperEthnic || !containsAny(slotText(d.Lower), gymwearMarkers) {
		return nil
	}
	sev, pen := relaxableBlock(cfg, penaltyRelaxedEthnic)
	return []RuleViolation{{
		RuleID:   RuleEthnicCoherence,
		Severity: sev,
		Message:  "ethnic upper wear does not pair with sportswear bottoms",
		Slots:    []OutfitSlot{SlotUpperWear, SlotLowerWear},
		Penalty:  pen,
	}}
}

var heavyWinterMarkers = []string{"puffer", "parka", "wool", "fleece", "down jacket", "overcoat", "heavy", "winter"}
var hotWeatherMarkers = []string{"linen", "tank", "sleeveless"}

func checkClimateSanity(d *OutfitDraft, ctx RuleContext, _ RuleConfig) []RuleViolation {
	var violations []RuleViolation
	climate := strings.ToLower(ctx.Climate)

	if climate == "hot" && d.Layering != nil {
		winterLayer := containsAny(d.Layering.Hint, heavyWinterMarkers) || strings.EqualFold(d.Layering.Season, "cold")
		if winterLayer {
			violations = append(violations, RuleViolation{
				RuleID:   RuleClimateSanity,
				Severity: SeverityWarn,
				Message:  "heavy winter layering suggested for a hot climate",
				Slots:    []OutfitSlot{SlotLayering},
				Evidence: d.Layering.Hint,
				Penalty:  penaltyClimateHotLayer,
			})
		}
	}

	if climate == "cold" && d.Upper != nil && d.Layering == nil {
		summerUpper := strings.EqualFold(d.Upper.Season, "hot") || containsAny(d.Upper.Hint, hotWeatherMarkers)
		if summerUpper {
			violations = append(violations, RuleViolation{
				RuleID:   RuleClimateSanity,
				Severity: SeverityWarn,
				Message:  "summer upper wear with no layering in a cold climate",
				Slots:    []OutfitSlot{SlotUpperWear, SlotLayering},
				Penalty:  penaltyClimateColdUpper,
			})
		}
	}
	return violations
}

func checkDuplicateItems(d *OutfitDraft, _ RuleContext, _ RuleConfig) []RuleViolation {
	seen := map[string]OutfitSlot{}
	var violations []RuleViolation
	for _, entry := range d.slotEntries() {
		id := entry.Item.ItemID
		if id == "" {
			continue
		}
		if firstSlot, dup := seen[id]; dup {
			violations = append(violations, RuleViolation{
				RuleID:   RuleDuplicateItems,
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("item %s appears in both %s and %s", id, firstSlot, entry.Slot),
				Slots:    []OutfitSlot{firstSlot, entry.Slot},
				Evidence: id,
			})
			continue
		}
		seen[id] = entry.Slot
	}
	return violations
}

func checkWardrobeAvailability(d *OutfitDraft, ctx RuleContext, _ RuleConfig) []RuleViolation {
	if ctx.ResponseMode != "visual_outfit" || !ctx.HasWardrobeItems {
		return nil
	}
	mandatory := []struct {
		Slot OutfitSlot
		Item *SlotItem
	}{
		{SlotUpperWear, d.Upper},
		{SlotLowerWear, d.Lower},
		{SlotFootwear, d.Footwear},
	}
	var empty []OutfitSlot
	for _, m := range mandatory {
		if m.Slot == SlotLowerWear && UpperIsDress(d) {
			continue
		}
		if m.Item == nil || (strings.TrimSpace(m.Item.Hint) == "" && m.Item.ItemID == "") {
			empty = append(empty, m.Slot)
		}
	}
	if len(empty) == 0 {
		return nil
	}
	// warn only: grounding may still salvage the rest of the outfit
	return []RuleViolation{{
		RuleID:   RuleWardrobeAvailability,
		Severity: SeverityWarn,
		Message:  fmt.Sprintf("no wardrobe hint or item for: %s", joinSlots(empty)),
		Slots:    empty,
		Penalty:  penaltyMissingSlotHints,
	}}
}

// slotText is everything we can sniff a garment type from.
func slotText(s *SlotItem) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(s.Subcategory + " " + s.Category + " " + s.Hint)
}

// slotFormality resolves the formality of a slot, preferring the structured
// field and falling back to explicit markers in the hint. Unknown stays
// unknown, rules skip rather than guess.
func slotFormality(s *SlotItem) (Formality, bool) {
	if s == nil {
		return "", false
	}
	switch Formality(strings.ToLower(s.Formality)) {
	case FormalityCasual:
		return FormalityCasual, true
	case FormalitySmartCasual:
		return FormalitySmartCasual, true
	case FormalitySmart:
		return FormalitySmart, true
	case FormalityFormal:
		return FormalityFormal, true
	}
	hint := strings.ToLower(s.Hint)
	switch {
	case contains(hint, "smart-casual"), contains(hint, "smart casual"):
		return FormalitySmartCasual, true
	case contains(hint, "formal"):
		return FormalityFormal, true
	case contains(hint, "smart"), contains(hint, "business"):
		return FormalitySmart, true
	case contains(hint, "casual"):
		return FormalityCasual, true
	}
	if containsAny(slotText(s), casualFootwearSubcats) {
		return FormalityCasual, true
	}
	return "", false
}

func slotSilhouette(s *SlotItem) Silhouette {
	if s == nil {
		return SilhouetteRegular
	}
	switch Silhouette(strings.ToLower(s.Silhouette)) {
	case SilhouetteSlim:
		return SilhouetteSlim
	case SilhouetteRelaxed:
		return SilhouetteRelaxed
	case SilhouetteLongline:
		return SilhouetteLongline
	case SilhouetteOversized:
		return SilhouetteOversized
	case SilhouetteRegular:
		return SilhouetteRegular
	}
	return classifySilhouette(s.Hint)
}

func joinSlots(slots []OutfitSlot) string {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
