package models

import "lookbookapi/styling"

// SuggestionResultOut is the payload persisted in OutfitSuggestion.ResultJSON
// and served back to the client.
type SuggestionResultOut struct {
	Outfits     []styling.VisualOutfit `json:"outfits"`
	Diagnostics styling.Diagnostics    `json:"diagnostics"`
}

// OutfitSuggestion is one suggestion run: the request parameters, the raw
// LLM drafts, and the validated result after ranking and grounding.
type OutfitSuggestion struct {
	JsonModel
	UserAccountID uint        `json:"-"`
	UserAccount   UserAccount `json:"-"`

	Occasion  string `json:"occasion"`
	Climate   string `json:"climate"`
	Formality string `json:"formality"`
	//"visual_outfit", "text_advice"
	ResponseMode string `json:"response_mode"`

	//"pending", "processing", "completed", "failed"
	Status          string  `json:"status"`
	RetryCount      uint    `json:"-"`
	ProcessingError *string `json:"-"`

	// raw candidate drafts as returned by the LLM
	DraftsJSON *string `gorm:"type:text" json:"-"`
	// ranked, grounded outfits plus diagnostics, served to the client as-is
	ResultJSON *string `gorm:"type:text" json:"result"`

	NeedsFallback  bool    `json:"needs_fallback"`
	FallbackReason *string `json:"fallback_reason"`

	LLMModel              *string `json:"-"`
	LLMThoughts           *string `gorm:"type:text" json:"-"`
	LLMInputTokenCount    int32   `json:"-"`
	LLMOutputTokenCount   int32   `json:"-"`
	LLMThoughtsTokenCount int32   `json:"-"`
	LLMTotalTokenCount    int32   `json:"-"`
}
