package styling

import (
	"strings"
)

// The classifier maps one raw wardrobe record to one ClassifiedItem. It is
// total: any input, including a zero record, classifies to something. The
// cascade is an ordered rule list and order is load bearing — ethnic markers
// beat "dress", "dress" beats the category buckets, and within the buckets
// the first match wins.

var ethnicMarkers = []string{"kurta", "saree", "sari", "lehenga", "sherwani", "anarkali", "dupatta", "salwar", "dhoti"}

// categoryBucket is one keyword bucket of the classification cascade.
type categoryBucket struct {
	Category Category
	Keywords []string
}

// categoryBuckets are matched in this order against the record's category
// text. "blazer" lives in outerwear on purpose: outerwear is checked before
// formalwear, so a blazer never lands in formalwear.
var categoryBuckets = []categoryBucket{
	{CategoryTops, []string{"t-shirt", "tshirt", "tee", "shirt", "top", "blouse", "polo", "tank", "sweater", "sweatshirt", "hoodie", "henley", "camisole", "tunic"}},
	{CategoryBottoms, []string{"bottom", "jeans", "pant", "trouser", "chino", "short", "skirt", "jogger", "legging", "cargo", "culotte"}},
	{CategoryFootwear, []string{"footwear", "shoe", "sneaker", "trainer", "loafer", "boot", "sandal", "heel", "flip-flop", "flipflop", "slide", "mule", "oxford", "derby", "espadrille", "jutti"}},
	{CategoryOuterwear, []string{"outerwear", "jacket", "coat", "blazer", "cardigan", "puffer", "parka", "windcheater", "overcoat", "trench", "gilet", "shacket"}},
	{CategoryAccessories, []string{"accessor", "belt", "watch", "bag", "hat", "cap", "scarf", "sunglass", "jewellery", "jewelry", "necklace", "earring", "bracelet", "tie", "sock"}},
	{CategorySportswear, []string{"gym", "sport", "athletic", "track", "running", "training", "workout", "jersey", "active"}},
	{CategoryEthnic, []string{"kurta", "saree", "sari", "lehenga", "ethnic", "sherwani", "dupatta", "salwar", "dhoti"}},
	{CategoryFormalwear, []string{"suit", "tuxedo", "formal", "waistcoat"}},
}

// classificationRule is one step of the cascade.
type classificationRule struct {
	ID       string
	Category Category
	Matches  func(rec WardrobeRecord) bool
}

// classificationCascade is evaluated top to bottom; the first matching rule
// decides the category. The final default-tops rule always matches.
var classificationCascade = buildCascade()

func buildCascade() []classificationRule {
	rules := []classificationRule{
		{
			ID:       "ethnic-marker",
			Category: CategoryEthnic,
			Matches: func(rec WardrobeRecord) bool {
				return containsAny(rec.ItemType, ethnicMarkers)
			},
		},
		{
			ID:       "dress",
			Category: CategoryDresses,
			Matches: func(rec WardrobeRecord) bool {
				return contains(rec.ItemType, "dress") || contains(rec.Category, "dress") ||
					contains(rec.ItemType, "jumpsuit") || contains(rec.Category, "jumpsuit")
			},
		},
	}
	for _, bucket := range categoryBuckets {
		b := bucket
		rules = append(rules, classificationRule{
			ID:       "bucket-" + string(b.Category),
			Category: b.Category,
			Matches: func(rec WardrobeRecord) bool {
				return containsAny(rec.Category, b.Keywords)
			},
		})
	}
	rules = append(rules, classificationRule{
		ID:       "default-tops",
		Category: CategoryTops,
		Matches:  func(WardrobeRecord) bool { return true },
	})
	return rules
}

// subcategoryVocab maps each category to its subcategory vocabulary, matched
// as substrings against name + item type in order.
var subcategoryVocab = map[Category][]string{
	CategoryTops:        {"t-shirt", "tshirt", "polo", "shirt", "blouse", "sweatshirt", "sweater", "hoodie", "tank", "tunic", "tee"},
	CategoryBottoms:     {"jeans", "chinos", "trousers", "shorts", "skirt", "joggers", "leggings", "cargos"},
	CategoryFootwear:    {"sneakers", "sneaker", "loafers", "loafer", "boots", "boot", "flip-flops", "flip flops", "slides", "sandals", "sandal", "heels", "heel", "oxfords", "oxford", "mules"},
	CategoryOuterwear:   {"blazer", "puffer", "parka", "trench", "overcoat", "cardigan", "jacket", "coat"},
	CategoryAccessories: {"belt", "watch", "bag", "scarf", "hat", "cap", "sunglasses", "necklace", "tie"},
	CategoryEthnic:      {"kurta", "saree", "sari", "lehenga", "sherwani", "salwar"},
	CategorySportswear:  {"track pants", "trackpants", "joggers", "jersey", "gym shorts", "running shoes"},
	CategoryFormalwear:  {"tuxedo", "suit", "dress shirt", "waistcoat"},
	CategoryDresses:     {"maxi dress", "midi dress", "jumpsuit", "gown", "slip dress", "dress"},
}

// defaultSubcategory is used when nothing in the vocabulary matches.
var defaultSubcategory = map[Category]string{
	CategoryTops:        "t-shirt",
	CategoryBottoms:     "trousers",
	CategoryFootwear:    "sneakers",
	CategoryOuterwear:   "jacket",
	CategoryAccessories: "accessory",
	CategoryEthnic:      "kurta",
	CategorySportswear:  "activewear",
	CategoryFormalwear:  "suit",
	CategoryDresses:     "dress",
}

// colorFamilies normalizes free-text color descriptions. First match wins.
var colorFamilies = []struct {
	Family   string
	Keywords []string
}{
	{"white", []string{"white", "ivory", "cream", "off-white"}},
	{"black", []string{"black", "jet", "charcoal black"}},
	{"blue", []string{"navy", "denim", "indigo", "cobalt", "blue"}},
	{"red", []string{"maroon", "burgundy", "crimson", "wine", "red"}},
	{"green", []string{"olive", "emerald", "sage", "mint", "green"}},
	{"yellow", []string{"mustard", "gold", "yellow"}},
	{"brown", []string{"tan", "beige", "khaki", "camel", "chocolate", "brown"}},
	{"grey", []string{"grey", "gray", "charcoal", "silver"}},
	{"pink", []string{"pink", "rose", "blush"}},
	{"purple", []string{"purple", "lavender", "lilac", "violet"}},
	{"orange", []string{"orange", "rust", "peach", "coral"}},
}

// ClassifyItem maps a raw wardrobe record to its canonical form. Pure and
// total: identical inputs give identical outputs and no input errors.
func ClassifyItem(rec WardrobeRecord) ClassifiedItem {
	category := classifyCategory(rec)
	subcategory := classifySubcategory(rec, category)

	item := ClassifiedItem{
		ID:            rec.ID,
		Name:          rec.Name,
		Category:      category,
		Subcategory:   subcategory,
		Silhouette:    classifySilhouette(rec.Fit),
		Formality:     classifyFormality(rec.Formality, category, subcategory),
		Season:        classifySeason(rec.Seasons, subcategory),
		AestheticTags: normalizeTags(rec.StyleTags),
		ColorFamily:   classifyColorFamily(rec.Color),
		HasImage:      rec.ImageKey != "",
		Color:         strings.ToLower(strings.TrimSpace(rec.Color)),
		Fabric:        strings.ToLower(strings.TrimSpace(rec.Fabric)),
		Fit:           strings.ToLower(strings.TrimSpace(rec.Fit)),
		ItemType:      strings.ToLower(strings.TrimSpace(rec.ItemType)),
		ImageKey:      rec.ImageKey,
	}
	return item
}

// ClassifyAll classifies a whole wardrobe in input order.
func ClassifyAll(records []WardrobeRecord) []ClassifiedItem {
	items := make([]ClassifiedItem, 0, len(records))
	for _, rec := range records {
		items = append(items, ClassifyItem(rec))
	}
	return items
}

func classifyCategory(rec WardrobeRecord) Category {
	for _, rule := range classificationCascade {
		if rule.Matches(rec) {
			return rule.Category
		}
	}
	// unreachable, the default rule always matches
	return CategoryTops
}

func classifySubcategory(rec WardrobeRecord, category Category) string {
	text := strings.ToLower(rec.Name + " " + rec.ItemType + " " + rec.Category)
	for _, sub := range subcategoryVocab[category] {
		if strings.Contains(text, sub) {
			return canonicalSubcategory(sub)
		}
	}
	return defaultSubcategory[category]
}

// canonicalSubcategory collapses singular/spelling variants.
func canonicalSubcategory(sub string) string {
	switch sub {
	case "tshirt", "tee":
		return "t-shirt"
	case "sneaker":
		return "sneakers"
	case "loafer":
		return "loafers"
	case "boot":
		return "boots"
	case "sandal":
		return "sandals"
	case "heel":
		return "heels"
	case "oxford":
		return "oxfords"
	case "flip flops":
		return "flip-flops"
	case "trackpants":
		return "track pants"
	}
	return sub
}

func classifySilhouette(fit string) Silhouette {
	fit = strings.ToLower(fit)
	switch {
	case contains(fit, "oversize"), contains(fit, "baggy"):
		return SilhouetteOversized
	case contains(fit, "longline"):
		return SilhouetteLongline
	case contains(fit, "relaxed"), contains(fit, "loose"), contains(fit, "wide"):
		return SilhouetteRelaxed
	case contains(fit, "slim"), contains(fit, "skinny"), contains(fit, "fitted"), contains(fit, "tailored"):
		return SilhouetteSlim
	}
	return SilhouetteRegular
}

func classifyFormality(text string, category Category, subcategory string) Formality {
	text = strings.ToLower(text)
	// smart-casual has to win before both "smart" and "casual"
	switch {
	case contains(text, "smart-casual"), contains(text, "smart casual"):
		return FormalitySmartCasual
	case contains(text, "formal"), contains(text, "dressy"):
		return FormalityFormal
	case contains(text, "smart"), contains(text, "business"), contains(text, "office"):
		return FormalitySmart
	case contains(text, "casual"), contains(text, "everyday"), contains(text, "relaxed"):
		return FormalityCasual
	}
	// nothing stated, fall back on what the garment is
	if category == CategoryFormalwear {
		return FormalityFormal
	}
	switch subcategory {
	case "flip-flops", "slides", "sandals":
		return FormalityCasual
	case "oxfords", "heels", "dress shirt", "blazer":
		return FormalitySmart
	}
	if category == CategorySportswear {
		return FormalityCasual
	}
	return FormalityCasual
}

func classifySeason(seasons []string, subcategory string) Season {
	text := strings.ToLower(strings.Join(seasons, " "))
	switch {
	case contains(text, "all"):
		return SeasonAllSeason
	case contains(text, "summer"), contains(text, "hot"):
		return SeasonHot
	case contains(text, "winter"), contains(text, "cold"):
		return SeasonCold
	case contains(text, "spring"), contains(text, "autumn"), contains(text, "fall"), contains(text, "mild"), contains(text, "monsoon"):
		return SeasonMild
	}
	switch subcategory {
	case "puffer", "parka", "overcoat", "sweater", "hoodie", "cardigan", "trench", "coat":
		return SeasonCold
	case "shorts", "flip-flops", "slides", "tank", "sandals":
		return SeasonHot
	}
	return SeasonAllSeason
}

func classifyColorFamily(color string) string {
	color = strings.ToLower(color)
	if strings.TrimSpace(color) == "" {
		return "neutral"
	}
	for _, family := range colorFamilies {
		if containsAny(color, family.Keywords) {
			return family.Family
		}
	}
	return "neutral"
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func containsAny(haystack string, needles []string) bool {
	haystack = strings.ToLower(haystack)
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
