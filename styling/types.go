// Package styling is the validation and grounding core of the outfit
// suggestion pipeline. Everything in this package is pure computation over
// its inputs: no database, no network, no shared state. Drafts come from the
// LLM generator, wardrobe records come from storage, and the caller gets back
// structured results it can render or discard.
package styling

// Category is the canonical wardrobe taxonomy. Every raw wardrobe record maps
// to exactly one category, the classifier decides which.
type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryFootwear    Category = "footwear"
	CategoryOuterwear   Category = "outerwear"
	CategoryAccessories Category = "accessories"
	CategoryEthnic      Category = "ethnic"
	CategorySportswear  Category = "sportswear"
	CategoryFormalwear  Category = "formalwear"
	CategoryDresses     Category = "dresses"
)

// AllCategories lists every canonical category. Coverage profiling iterates
// this so an empty wardrobe still reports all-zero buckets.
var AllCategories = []Category{
	CategoryTops,
	CategoryBottoms,
	CategoryFootwear,
	CategoryOuterwear,
	CategoryAccessories,
	CategoryEthnic,
	CategorySportswear,
	CategoryFormalwear,
	CategoryDresses,
}

func (c Category) String() string {
	return string(c)
}

// IsValid returns true if the category is a recognized value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTops, CategoryBottoms, CategoryFootwear, CategoryOuterwear,
		CategoryAccessories, CategoryEthnic, CategorySportswear,
		CategoryFormalwear, CategoryDresses:
		return true
	}
	return false
}

// Silhouette is the cut/volume of a garment.
type Silhouette string

const (
	SilhouetteSlim      Silhouette = "slim"
	SilhouetteRegular   Silhouette = "regular"
	SilhouetteRelaxed   Silhouette = "relaxed"
	SilhouetteLongline  Silhouette = "longline"
	SilhouetteOversized Silhouette = "oversized"
)

func (s Silhouette) String() string {
	return string(s)
}

// Formality is a four-level ordinal: casual < smart-casual < smart < formal.
type Formality string

const (
	FormalityCasual      Formality = "casual"
	FormalitySmartCasual Formality = "smart-casual"
	FormalitySmart       Formality = "smart"
	FormalityFormal      Formality = "formal"
)

func (f Formality) String() string {
	return string(f)
}

// formalityRank orders the compatibility chain. Adjacent levels pair fine,
// anything two or more steps apart does not.
var formalityRank = map[Formality]int{
	FormalityCasual:      0,
	FormalitySmartCasual: 1,
	FormalitySmart:       2,
	FormalityFormal:      3,
}

// Adjacent reports whether two formality levels are at most one step apart in
// the chain. Unknown levels are treated as compatible with everything.
func (f Formality) Adjacent(other Formality) bool {
	a, okA := formalityRank[f]
	b, okB := formalityRank[other]
	if !okA || !okB {
		return true
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

// Season is the wearing season of an item.
type Season string

const (
	SeasonHot       Season = "hot"
	SeasonMild      Season = "mild"
	SeasonCold      Season = "cold"
	SeasonAllSeason Season = "all-season"
)

func (s Season) String() string {
	return string(s)
}

// OutfitSlot is a named position in an outfit.
type OutfitSlot string

const (
	SlotUpperWear   OutfitSlot = "upper_wear"
	SlotLowerWear   OutfitSlot = "lower_wear"
	SlotFootwear    OutfitSlot = "footwear"
	SlotLayering    OutfitSlot = "layering"
	SlotAccessories OutfitSlot = "accessories"
)

func (s OutfitSlot) String() string {
	return string(s)
}

// WardrobeRecord is the raw item shape as it arrives from storage, before
// classification. Free-text fields come straight from the user or from the
// LLM attribute extractor and carry no guarantees.
type WardrobeRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ItemType  string   `json:"item_type"`
	Category  string   `json:"category"`
	Color     string   `json:"color"`
	Fabric    string   `json:"fabric"`
	Fit       string   `json:"fit"`
	Formality string   `json:"formality"`
	Seasons   []string `json:"seasons"`
	StyleTags []string `json:"style_tags"`
	ImageKey  string   `json:"image_key"`
}

// ClassifiedItem is the canonical view of a wardrobe record. Derived per
// request, never persisted.
type ClassifiedItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	Subcategory string     `json:"subcategory"`
	Silhouette  Silhouette `json:"silhouette"`
	Formality   Formality  `json:"formality"`
	Season      Season     `json:"season"`
	// AestheticTags are lowercased style tags (streetwear, minimal, ...).
	AestheticTags []string `json:"aesthetic_tags"`
	ColorFamily   string   `json:"color_family"`
	HasImage      bool     `json:"has_image"`

	// Raw fields carried through for grounding similarity scoring.
	Color    string `json:"color"`
	Fabric   string `json:"fabric"`
	Fit      string `json:"fit"`
	ItemType string `json:"item_type"`
	ImageKey string `json:"image_key"`
}

// SlotItem is one proposed item inside a draft slot. Everything except the
// hint is optional; the generator fills what it knows.
type SlotItem struct {
	Hint        string `json:"hint"`
	ItemID      string `json:"item_id,omitempty"`
	Category    string `json:"category,omitempty"`
	Formality   string `json:"formality,omitempty"`
	Silhouette  string `json:"silhouette,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Season      string `json:"season,omitempty"`
}

// OutfitDraft is one candidate outfit proposed by the generator, consumed
// once by evaluation and then discarded. Missing slots are not an error,
// the hard rules report them.
type OutfitDraft struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Upper       *SlotItem  `json:"upper_wear,omitempty"`
	Lower       *SlotItem  `json:"lower_wear,omitempty"`
	Footwear    *SlotItem  `json:"footwear,omitempty"`
	Layering    *SlotItem  `json:"layering,omitempty"`
	Accessories []SlotItem `json:"accessories,omitempty"`
	WhyItWorks  string     `json:"why_it_works"`
	Source      string     `json:"source,omitempty"`
	Occasion    string     `json:"occasion,omitempty"`
	Vibe        string     `json:"vibe,omitempty"`
}

// slotEntry pairs a slot name with one proposed item, in resolution order.
type slotEntry struct {
	Slot OutfitSlot
	Item SlotItem
}

// slotEntries flattens the draft into (slot, item) pairs in fixed slot order:
// upper, lower, footwear, layering, then accessories.
func (d *OutfitDraft) slotEntries() []slotEntry {
	var entries []slotEntry
	if d.Upper != nil {
		entries = append(entries, slotEntry{SlotUpperWear, *d.Upper})
	}
	if d.Lower != nil {
		entries = append(entries, slotEntry{SlotLowerWear, *d.Lower})
	}
	if d.Footwear != nil {
		entries = append(entries, slotEntry{SlotFootwear, *d.Footwear})
	}
	if d.Layering != nil {
		entries = append(entries, slotEntry{SlotLayering, *d.Layering})
	}
	for _, acc := range d.Accessories {
		entries = append(entries, slotEntry{SlotAccessories, acc})
	}
	return entries
}

// Severity is a closed variant: a violation either blocks the draft outright
// or only warns and contributes a score penalty. Ranking handles both arms
// exhaustively, adding a severity means touching every consumer.
type Severity int

const (
	SeverityBlock Severity = iota
	SeverityWarn
)

func (s Severity) String() string {
	switch s {
	case SeverityBlock:
		return "block"
	case SeverityWarn:
		return "warn"
	}
	return "unknown"
}

// RuleViolation is one finding from the hard rule evaluator. Never mutated
// after evaluation.
type RuleViolation struct {
	RuleID   string       `json:"rule_id"`
	Severity Severity     `json:"severity"`
	Message  string       `json:"message"`
	Slots    []OutfitSlot `json:"slots_involved,omitempty"`
	Evidence string       `json:"evidence,omitempty"`
	// Penalty applies to the combined score only when the severity is warn.
	Penalty float64 `json:"penalty,omitempty"`
}

// HardRuleResult is the outcome of evaluating one draft against the hard
// rule set.
type HardRuleResult struct {
	// Allowed is true iff no violation carries block severity.
	Allowed    bool            `json:"allowed"`
	Violations []RuleViolation `json:"violations"`
	// ScorePenalty sums the warn-path penalties. Block violations are
	// terminal and contribute nothing here.
	ScorePenalty float64 `json:"score_penalty"`
}

// SoftRuleType marks whether a soft rule rewards or penalizes a match.
type SoftRuleType string

const (
	SoftRulePrefer SoftRuleType = "prefer"
	SoftRuleAvoid  SoftRuleType = "avoid"
)

// SoftRule is a weighted preference used for scoring, never for blocking.
type SoftRule struct {
	ID          string       `json:"id"`
	Type        SoftRuleType `json:"type"`
	Condition   string       `json:"condition"`
	Weight      float64      `json:"weight"`
	Explanation string       `json:"explanation,omitempty"`
}

// CoverageLevel buckets a per-category item count.
type CoverageLevel string

const (
	CoverageNone   CoverageLevel = "none"
	CoverageLow    CoverageLevel = "low"
	CoverageMedium CoverageLevel = "medium"
	CoverageHigh   CoverageLevel = "high"
)

// CategoryCoverage is the per-category slice of a coverage profile.
type CategoryCoverage struct {
	Count      int           `json:"count"`
	WithImages int           `json:"with_images"`
	Level      CoverageLevel `json:"level"`
}

// CoverageProfile summarizes which outfit slots the wardrobe can fill.
type CoverageProfile struct {
	Categories            map[Category]CategoryCoverage `json:"categories"`
	AvailableSlots        []OutfitSlot                  `json:"available_slots"`
	MissingMandatorySlots []OutfitSlot                  `json:"missing_mandatory_slots"`
	CanCreateComplete     bool                          `json:"can_create_complete_outfit"`
}

// RuleContext carries per-request facts the hard rules read.
type RuleContext struct {
	// ResponseMode is what the caller intends to render, e.g. "visual_outfit".
	ResponseMode     string `json:"response_mode"`
	HasWardrobeItems bool   `json:"has_wardrobe_items"`
	// Climate is "hot", "cold", "mild" or empty when unknown.
	Climate string `json:"climate,omitempty"`
	// Formality is the requested occasion formality, empty when unspecified.
	Formality string `json:"formality,omitempty"`
}

// Strictness selects how the evaluator treats the demotable block rules.
// Relaxed is the rescue pass: selected blocks become warns. There is one
// evaluation path, strictness only changes severities.
type Strictness int

const (
	StrictnessRelaxed Strictness = iota
	StrictnessNormal
	StrictnessStrict
)

func (s Strictness) String() string {
	switch s {
	case StrictnessRelaxed:
		return "relaxed"
	case StrictnessNormal:
		return "normal"
	case StrictnessStrict:
		return "strict"
	}
	return "unknown"
}

// RuleConfig enables/disables individual hard rules and sets strictness.
type RuleConfig struct {
	Strictness Strictness `json:"strictness"`
	// Disabled turns off rules by id. Nil means everything runs.
	Disabled map[string]bool `json:"disabled,omitempty"`
}

// DefaultRuleConfig runs every rule at normal strictness.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{Strictness: StrictnessNormal}
}

func (c RuleConfig) enabled(ruleID string) bool {
	if c.Disabled == nil {
		return true
	}
	return !c.Disabled[ruleID]
}

// VisualOutfitItem is one grounded, displayable wardrobe entry.
type VisualOutfitItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Layer    int    `json:"layer"`
}

// VisualOutfit is the final renderable result of grounding one draft.
// An outfit that resolves zero items is never surfaced.
type VisualOutfit struct {
	Title      string             `json:"title"`
	Layout     string             `json:"layout"`
	Items      []VisualOutfitItem `json:"items"`
	WhyItWorks string             `json:"why_it_works"`
	Occasion   string             `json:"occasion,omitempty"`
	Vibe       string             `json:"vibe,omitempty"`
}

// Diagnostics summarizes one ranking batch for the caller.
type Diagnostics struct {
	PassedCount     int    `json:"passed_count"`
	BlockedCount    int    `json:"blocked_count"`
	NeedsFallback   bool   `json:"needs_fallback"`
	FallbackReason  string `json:"fallback_reason,omitempty"`
	CoverageWarning string `json:"coverage_warning,omitempty"`
}
