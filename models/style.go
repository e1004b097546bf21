package models

import "github.com/lib/pq"

// StyleProfile holds the per-user styling preferences. The free-text rule
// arrays are generated by the LLM from the quiz answers and feed the soft
// rule scorer on every suggestion request.
type StyleProfile struct {
	JsonModel
	UserAccountID uint        `gorm:"uniqueIndex" json:"-"`
	UserAccount   UserAccount `json:"-"`

	Gender   *string `json:"gender"`
	BodyType *string `json:"body_type"`
	// default climate/formality used when a request leaves them blank
	Climate   string `json:"climate"`
	Formality string `json:"formality"`

	Aesthetics pq.StringArray `gorm:"type:text[]" json:"aesthetics"`

	ValidPairs      pq.StringArray `gorm:"type:text[]" json:"valid_pairs"`
	AvoidPairs      pq.StringArray `gorm:"type:text[]" json:"avoid_pairs"`
	CoreDirections  pq.StringArray `gorm:"type:text[]" json:"core_directions"`
	ColorRules      pq.StringArray `gorm:"type:text[]" json:"color_rules"`
	SilhouetteRules pq.StringArray `gorm:"type:text[]" json:"silhouette_rules"`
	BodyTypeRules   pq.StringArray `gorm:"type:text[]" json:"body_type_rules"`
	GenderNotes     pq.StringArray `gorm:"type:text[]" json:"gender_notes"`

	//"pending", "processing", "generated", "failed"
	RulesStatus     string  `json:"rules_status"`
	RulesRetryCount uint    `json:"-"`
	RulesError      *string `json:"-"`
}

type StyleProfileIn struct {
	Gender     *string  `json:"gender"`
	BodyType   *string  `json:"body_type"`
	Climate    string   `json:"climate"`
	Formality  string   `json:"formality"`
	Aesthetics []string `json:"aesthetics"`
}
