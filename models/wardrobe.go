package models

import "github.com/lib/pq"

// WardrobeItem is a single garment owned by a user. The attribute columns
// are filled by the LLM extraction task after the image upload finishes.
type WardrobeItem struct {
	JsonModel
	OwnerID uint        `json:"owner_id"`
	Owner   UserAccount `json:"-"`

	Name        string  `json:"name"`
	Description *string `json:"description"`
	// raw category text, either user supplied or LLM extracted
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	ItemType    string `json:"item_type"`
	Color       string `json:"color"`
	Fabric      string `json:"fabric"`
	Fit         string `json:"fit"`
	Formality   string `json:"formality"`
	Silhouette  string `json:"silhouette"`

	Seasons       pq.StringArray `gorm:"type:text[]" json:"seasons"`
	AestheticTags pq.StringArray `gorm:"type:text[]" json:"aesthetic_tags"`

	// R2 object key, nil until the client confirms the upload
	ImageKey *string `json:"-"`
	// presigned read URL, populated on the way out, never stored
	ImageURL *string `gorm:"-" json:"image_url"`

	//"pending", "processing", "extracted", "failed", "skipped"
	ExtractionStatus     string  `json:"extraction_status"`
	ExtractionRetryCount uint    `json:"-"`
	ExtractionError      *string `json:"-"`

	LLMInputTokenCount    int32 `json:"-"`
	LLMOutputTokenCount   int32 `json:"-"`
	LLMThoughtsTokenCount int32 `json:"-"`
	LLMTotalTokenCount    int32 `json:"-"`
}
