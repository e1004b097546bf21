package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI model to use for a call.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

func Int32Pointer(i int32) *int32 {
	return &i
}

type LLMResponse struct {
	Response           string `json:"response"`
	InputTokenCount    int32  `json:"input_token_count"`
	Thoughts           string `json:"thoughts"`
	ThoughtsTokenCount int32  `json:"thoughts_token_count"`
	OutputTokenCount   int32  `json:"output_token_count"`
	TotalTokenCount    int32  `json:"total_token_count"`
	IsTest             bool   `json:"is_test"`
}

// StylistLLMProvider is the LLM surface the worker tasks depend on. All three
// calls return raw JSON text that the caller validates and parses; the model
// output is never trusted as-is.
type StylistLLMProvider interface {
	// GenerateOutfitDrafts turns a prompt built from the wardrobe inventory and
	// the request parameters into candidate outfit drafts.
	GenerateOutfitDrafts(prompt string, modelName LLMModelName) (*LLMResponse, error)
	// ExtractItemAttributes reads one garment photo and returns its attributes.
	ExtractItemAttributes(filePath string, modelName LLMModelName) (*LLMResponse, error)
	// GeneratePreferenceRules expands a style profile summary into free-text
	// styling rules for the soft scorer.
	GeneratePreferenceRules(profileSummary string, modelName LLMModelName) (*LLMResponse, error)
}

type GoogleStylistLLM struct{}

type ResponseWithThoughts struct {
	Thoughts string `json:"thoughts"`
	Text     string `json:"text"`
}

var dashAlphaRule = regexp.MustCompile(`[^a-zA-Z0-9-]`)

func tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath string, newName *string) (*genai.File, error) {
	var genFile *genai.File
	var err error
	maxUploadTimes := 3
	for i := range maxUploadTimes {
		config := &genai.UploadFileConfig{}
		if newName != nil {
			config = &genai.UploadFileConfig{
				Name: *newName,
			}
		}

		genFile, err = client.Files.UploadFromPath(ctx, filePath, config)
		if err == nil {
			fmt.Println("File uploaded successfully:", filePath, "Attempt:", i+1)
			return genFile, nil
		}
		fmt.Printf("Error uploading file %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload file to google storage after %d attempts: %s", maxUploadTimes, filePath)
}

func GetFirstCandidateTextWithThoughts(result *genai.GenerateContentResponse) (*ResponseWithThoughts, error) {
	var thinkingContent string
	for _, c := range result.Candidates {
		fmt.Println("Finish reason: ", c.FinishReason, " Finish message: ", c.FinishMessage)

		if len(c.SafetyRatings) > 0 {
			fmt.Println("[Safety] Safety ratings present:", len(c.SafetyRatings))
			for _, rating := range c.SafetyRatings {
				fmt.Println("[Safety] rating:", rating.Category, "Score:", rating.Probability, "Severity score:", rating.SeverityScore, " Blocked:", rating.Blocked)
				if rating.Blocked {
					return nil, fmt.Errorf("content violation: couldn't analyze the request, because it contains %s", rating.Category)
				}
			}
		}
		for _, part := range c.Content.Parts {
			if part.Thought && part.Text != "" {
				if result.UsageMetadata != nil && result.UsageMetadata.ThoughtsTokenCount > 25000 {
					fmt.Println("Warning: Thought content is too long:", result.UsageMetadata.ThoughtsTokenCount, part.Text)
				}
				thinkingContent = part.Text
				continue
			}
		}
	}
	return &ResponseWithThoughts{
		Thoughts: thinkingContent,
		Text:     result.Text(),
	}, nil
}

func newGenAIClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
}

func buildLLMResponse(result *genai.GenerateContentResponse) (*LLMResponse, error) {
	var inputTokenCount int32
	var thoughtsTokenCount int32
	var outputTokenCount int32
	var totalTokenCount int32
	if result.UsageMetadata != nil {
		inputTokenCount = result.UsageMetadata.PromptTokenCount
		thoughtsTokenCount = result.UsageMetadata.ThoughtsTokenCount
		outputTokenCount = result.UsageMetadata.CandidatesTokenCount
		totalTokenCount = result.UsageMetadata.TotalTokenCount
		fmt.Println("Input token count:", inputTokenCount)
		fmt.Println("Output token count:", outputTokenCount)
		fmt.Println("Thoughts token count:", thoughtsTokenCount)
		fmt.Println("Total token count:", totalTokenCount)
	} else {
		fmt.Println("UsageMetadata is nil!")
	}

	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		if result.PromptFeedback != nil {
			fmt.Println(result.PromptFeedback.BlockReason)
			fmt.Println(result.PromptFeedback.BlockReasonMessage)
			fmt.Println(result.PromptFeedback.SafetyRatings)
			return nil, fmt.Errorf("content violation: %s ", result.PromptFeedback.BlockReasonMessage)
		}
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}
	return &LLMResponse{
		Response:           llmResponseText.Text,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}

func (GoogleStylistLLM) GenerateOutfitDrafts(prompt string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := newGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{{Text: prompt}}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  50000,
		Temperature:      floatPointer(0.8),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert personal stylist. From the wardrobe inventory and the request you receive, propose 3 to 5 complete outfit drafts. Prefer items the user actually owns and reference them by their listed item id. Follow the below instructions. Do not deviate from these requirements. Return the response in JSON format only:
{"outfits": [{"id": string, "title": string, "upper_wear": {"hint": string, "item_id": string, "formality": string, "subcategory": string}, "lower_wear": {...}, "footwear": {...}, "layering": {...}, "accessories": [{...}], "why_it_works": string, "occasion": string, "vibe": string}]}
1. Every outfit must name upper_wear, lower_wear and footwear, except when the upper piece is a dress or jumpsuit, which also covers the lower slot.
2. "hint" is a short lowercase description of the garment ("white linen shirt"). "item_id" is the id from the inventory when the piece exists there, empty otherwise.
3. Respect the requested occasion, climate and formality. Do not mix ethnic pieces with gymwear, and do not pair formal uppers with flip-flops or slides.
4. Make sure "\n" is escaped properly in every field value as "\\n".`},
			},
		},
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
		},
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	return buildLLMResponse(result)
}

func (GoogleStylistLLM) ExtractItemAttributes(filePath string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := newGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(filePath)
	sanitizedFileName := dashAlphaRule.ReplaceAllString(strings.ReplaceAll(fileName, ".", "-"), "")
	genFile, err := tryUploadGoogleStorage(ctx, client, filePath, &sanitizedFileName)
	if err != nil {
		fmt.Println("Error uploading file:", filePath, err)
		return nil, fmt.Errorf("error uploading file to google storage %s: %v", filePath, err)
	}

	parts := []*genai.Part{
		{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  8000,
		Temperature:      floatPointer(0.2),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert at cataloguing clothing from photos. Analyze the single garment in the image and return its attributes. Use lowercase values. "category" is one of: tops, bottoms, dresses, outerwear, footwear, accessories, ethnic, formalwear, sportswear. "formality" is one of: casual, smart-casual, smart, formal. "silhouette" is one of: slim, regular, relaxed, oversized, longline. "seasons" lists the suitable seasons out of: summer, winter, monsoon, all-season. "aesthetic_tags" lists up to three style aesthetics such as streetwear, minimal, preppy, classic. If the image contains no garment, return "unknown item" for the name and keep other fields empty.`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"name":           {Type: "string"},
				"description":    {Type: "string"},
				"category":       {Type: "string"},
				"subcategory":    {Type: "string"},
				"item_type":      {Type: "string"},
				"color":          {Type: "string"},
				"fabric":         {Type: "string"},
				"fit":            {Type: "string"},
				"formality":      {Type: "string"},
				"silhouette":     {Type: "string"},
				"seasons":        {Type: "array", Items: &genai.Schema{Type: "string"}},
				"aesthetic_tags": {Type: "array", Items: &genai.Schema{Type: "string"}},
			},
			Required: []string{"name", "category", "color"},
		},
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	return buildLLMResponse(result)
}

func (GoogleStylistLLM) GeneratePreferenceRules(profileSummary string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := newGenAIClient(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{{Text: profileSummary}}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  20000,
		Temperature:      floatPointer(0.6),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert personal stylist. From the user profile you receive, produce short free-text styling rules. Each statement is a single lowercase sentence fragment ("oversized tops with slim bottoms"). Return the response in JSON format only with these fields, each an array of strings: "valid_pairs" (combinations that work for this user), "avoid_pairs" (combinations to avoid), "core_directions" (overall style directions), "color_rules", "silhouette_rules", "body_type_rules", "gender_notes". Keep each array under 8 entries. Do not invent preferences the profile does not support.`},
			},
		},
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	return buildLLMResponse(result)
}
