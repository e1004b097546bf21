package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lookbookapi/models"
	"lookbookapi/services"
	"lookbookapi/styling"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type AttributeExtractionPayload struct {
	ItemID uint `json:"item_id"`
}
type OutfitSuggestionPayload struct {
	SuggestionID uint `json:"suggestion_id"`
}
type PreferenceRulesPayload struct {
	ProfileID uint `json:"profile_id"`
}

// Client initializes an asynq client for enqueuing tasks
func NewClient() (*asynq.Client, error) {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}), nil
}

func NewAttributeExtractionTask(itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(AttributeExtractionPayload{ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("stylist:extract_attributes", payload), nil
}

func NewOutfitSuggestionTask(suggestionID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(OutfitSuggestionPayload{SuggestionID: suggestionID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("stylist:suggest_outfits", payload), nil
}

func NewPreferenceRulesTask(profileID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(PreferenceRulesPayload{ProfileID: profileID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("stylist:generate_rules", payload), nil
}

// ItemAttributesResponse is the JSON the extraction model returns.
type ItemAttributesResponse struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	ItemType      string   `json:"item_type"`
	Color         string   `json:"color"`
	Fabric        string   `json:"fabric"`
	Fit           string   `json:"fit"`
	Formality     string   `json:"formality"`
	Silhouette    string   `json:"silhouette"`
	Seasons       []string `json:"seasons"`
	AestheticTags []string `json:"aesthetic_tags"`
}

// OutfitDraftsResponse is the JSON the draft model returns.
type OutfitDraftsResponse struct {
	Outfits []styling.OutfitDraft `json:"outfits"`
}

// PreferenceRulesResponse is the JSON the rules model returns.
type PreferenceRulesResponse struct {
	ValidPairs      []string `json:"valid_pairs"`
	AvoidPairs      []string `json:"avoid_pairs"`
	CoreDirections  []string `json:"core_directions"`
	ColorRules      []string `json:"color_rules"`
	SilhouetteRules []string `json:"silhouette_rules"`
	BodyTypeRules   []string `json:"body_type_rules"`
	GenderNotes     []string `json:"gender_notes"`
}

func getFileForItem(awsService services.AWSServiceProvider, item models.WardrobeItem) ([]byte, string, error) {
	bucketName := os.Getenv("R2_BUCKET_NAME")
	fmt.Printf("[Item: %v] Request presigned download url..\n", item.ID)
	if item.ImageKey == nil {
		return nil, "", fmt.Errorf("[Item: %v] Image key is nil", item.ID)
	}
	fileUrl, err := awsService.GetPresignedR2FileReadURL(context.TODO(), bucketName, *item.ImageKey)
	fileName := filepath.Base(*item.ImageKey)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting presigned URL for file %s", item.ID, *item.ImageKey))
		return nil, fileName, err
	}
	fmt.Printf("Downloading... %s\n", fileUrl)
	fileBytes, err := services.ReadFileFromUrl(fileUrl)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on downloading file %s: %v", item.ID, *item.ImageKey, err))
		return nil, fileName, err
	}

	return fileBytes, fileName, nil
}

func cleanAIResponseText(text string) string {
	cleanContent := strings.ReplaceAll(text, "```json", "")
	cleanContent = strings.TrimSuffix(strings.TrimSpace(cleanContent), "```")
	return cleanContent
}

func cleanAIResponseSeparateFieldsText(text string) string {
	return strings.ReplaceAll(text, "\\n", "\n")
}

// HandleAttributeExtractionTask downloads the item photo, runs the attribute
// extraction model and fills the wardrobe item columns.
func HandleAttributeExtractionTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.StylistLLMProvider,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	googleKey := os.Getenv("GOOGLE_API_KEY")
	if googleKey == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload AttributeExtractionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Item: %v] Start Processing\n", payload.ItemID)
	var item models.WardrobeItem
	res := db.Joins("Owner").First(&item, payload.ItemID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving wardrobe item for processing %v", payload.ItemID))
		return res.Error
	}
	if item.ImageKey == nil {
		// nothing to extract from, attributes stay whatever the user typed
		item.ExtractionStatus = "skipped"
		if err := db.Save(&item).Error; err != nil {
			sentry.CaptureException(fmt.Errorf("[Item: %v] Error on saving skipped item %v", payload.ItemID, err))
			return err
		}
		return nil
	}

	fileBytes, fileName, err := getFileForItem(awsService, item)
	if err != nil {
		saveExtractionFail(db, item, "Failed to read the item photo, please upload it again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on getting file %s: %v", payload.ItemID, *item.ImageKey, err))
		return err
	}
	fmt.Printf("[Item: %v] Downloaded file size: %d bytes\n", payload.ItemID, len(fileBytes))

	filePath, err := services.CreateTempFile(fileBytes, fileName)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on creating temp file %s: %v", payload.ItemID, fileName, err))
		return err
	}
	defer os.Remove(filePath)

	model := services.Flash25
	modelString := model.String()
	fmt.Printf("[Item: %v] Model: %s\n", payload.ItemID, modelString)

	llmResponse, err := stylist.ExtractItemAttributes(filePath, model)
	if err != nil {
		if strings.Contains(err.Error(), "content violation") {
			saveExtractionFail(db, item, "Sorry, it seems that this photo contains content that we cannot process.", false)
			sentry.CaptureException(fmt.Errorf("[Item: %v] Content violation on extracting attributes %s: %v", payload.ItemID, *item.ImageKey, err))
			return nil
		}
		saveExtractionFail(db, item, "Failed to analyze the item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on extracting attributes %s: %v", payload.ItemID, *item.ImageKey, err))
		return err
	}
	if llmResponse == nil {
		saveExtractionFail(db, item, "Failed to analyze the item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Response is nil but no error provided on extracting %s", payload.ItemID, *item.ImageKey))
		return fmt.Errorf("[Item: %v] Response is nil but no error provided on extracting %s", payload.ItemID, *item.ImageKey)
	}

	cleanContent := cleanAIResponseText(llmResponse.Response)
	fmt.Printf("[Item: %v] LLM Processed: %q, IT: %d, OT: %d, TT: %d, TOT: %d\n", payload.ItemID, cleanContent, llmResponse.InputTokenCount, llmResponse.OutputTokenCount, llmResponse.ThoughtsTokenCount, llmResponse.TotalTokenCount)
	var parsed ItemAttributesResponse
	if err := json.Unmarshal([]byte(cleanContent), &parsed); err != nil {
		fmt.Printf("[Item: %v] Error on parsing Gemini %s AI json %s\n", payload.ItemID, modelString, llmResponse.Response)
		saveExtractionFail(db, item, "Failed to read the item attributes, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Item: %v] Error on parsing Gemini %s AI json %s", payload.ItemID, modelString, llmResponse.Response))
		return err
	}

	// users often leave the name empty on upload, the model's one is nicer
	titleCaser := cases.Title(language.English)
	if item.Name == "" && parsed.Name != "" {
		item.Name = titleCaser.String(parsed.Name)
	}
	if parsed.Description != "" {
		item.Description = services.StrPointer(cleanAIResponseSeparateFieldsText(parsed.Description))
	}
	item.Category = parsed.Category
	item.Subcategory = parsed.Subcategory
	item.ItemType = parsed.ItemType
	item.Color = parsed.Color
	item.Fabric = parsed.Fabric
	item.Fit = parsed.Fit
	item.Formality = parsed.Formality
	item.Silhouette = parsed.Silhouette
	item.Seasons = pq.StringArray(parsed.Seasons)
	item.AestheticTags = pq.StringArray(parsed.AestheticTags)
	item.ExtractionStatus = "extracted"
	item.ExtractionError = nil
	item.LLMInputTokenCount = llmResponse.InputTokenCount
	item.LLMOutputTokenCount = llmResponse.OutputTokenCount
	item.LLMThoughtsTokenCount = llmResponse.ThoughtsTokenCount
	item.LLMTotalTokenCount = llmResponse.TotalTokenCount

	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving wardrobe item %v", payload.ItemID))
		return tx.Error
	}
	fmt.Printf("[Item: %v] Extraction finished successfully..\n", payload.ItemID)
	if fbApp != nil && item.Owner.ReceiveNotifications {
		services.SendNotification(fbApp, db, item.OwnerID, "Item Added", fmt.Sprintf("%s is ready in your wardrobe", item.Name), map[string]string{"item_id": fmt.Sprintf("%d", item.ID), "type": "item_extracted"})
	}
	return nil
}

// HandleOutfitSuggestionTask runs the full suggestion pipeline: classify the
// wardrobe, ask the LLM for drafts, validate and rank them against the hard
// and soft rules, ground the survivors and persist the result.
func HandleOutfitSuggestionTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.StylistLLMProvider,
	fbApp *firebase.App) error {
	var payload OutfitSuggestionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Suggestion: %v] Start Processing\n", payload.SuggestionID)
	var suggestion models.OutfitSuggestion
	res := db.Joins("UserAccount").First(&suggestion, payload.SuggestionID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving suggestion for processing %v", payload.SuggestionID))
		return res.Error
	}
	if suggestion.Status == "completed" {
		fmt.Printf("[Suggestion: %v] Already completed\n", payload.SuggestionID)
		return nil
	}
	suggestion.Status = "processing"
	db.Save(&suggestion)

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", suggestion.UserAccountID).Order("id asc").Find(&items).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Suggestion: %v] Error fetching wardrobe items: %v", payload.SuggestionID, err))
		return err
	}

	var profile models.StyleProfile
	hasProfile := db.Where("user_account_id = ?", suggestion.UserAccountID).First(&profile).Error == nil

	classified := styling.ClassifyAll(wardrobeRecords(items))
	coverage := styling.BuildCoverageProfile(classified)

	model := services.Flash25
	modelString := model.String()
	fmt.Printf("[Suggestion: %v] Model: %s\n", payload.SuggestionID, modelString)

	prompt := buildSuggestionPrompt(suggestion, classified, coverage, profile, hasProfile)
	llmResponse, err := stylist.GenerateOutfitDrafts(prompt, model)
	if err != nil {
		if strings.Contains(err.Error(), "content violation") {
			saveSuggestionFail(db, suggestion, "Sorry, we could not process this request.", false)
			sentry.CaptureException(fmt.Errorf("[Suggestion: %v] Content violation on generating drafts: %v", payload.SuggestionID, err))
			return nil
		}
		saveSuggestionFail(db, suggestion, "Failed to generate outfit ideas, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Suggestion: %v] Error on generating drafts: %v", payload.SuggestionID, err))
		return err
	}
	if llmResponse == nil {
		saveSuggestionFail(db, suggestion, "Failed to generate outfit ideas, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Suggestion: %v] Response is nil but no error provided on generating drafts", payload.SuggestionID))
		return fmt.Errorf("[Suggestion: %v] Response is nil but no error provided on generating drafts", payload.SuggestionID)
	}

	cleanContent := cleanAIResponseText(llmResponse.Response)
	fmt.Printf("[Suggestion: %v] LLM Processed, IT: %d, OT: %d, TT: %d, TOT: %d\n", payload.SuggestionID, llmResponse.InputTokenCount, llmResponse.OutputTokenCount, llmResponse.ThoughtsTokenCount, llmResponse.TotalTokenCount)
	var parsed OutfitDraftsResponse
	if err := json.Unmarshal([]byte(cleanContent), &parsed); err != nil {
		fmt.Printf("[Suggestion: %v] Error on parsing Gemini %s AI json %s\n", payload.SuggestionID, modelString, llmResponse.Response)
		saveSuggestionFail(db, suggestion, "Failed to read the outfit ideas, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Suggestion: %v] Error on parsing Gemini %s AI json %s", payload.SuggestionID, modelString, llmResponse.Response))
		return err
	}
	suggestion.DraftsJSON = services.StrPointer(cleanContent)

	var rules []styling.SoftRule
	if hasProfile {
		rules = styling.NormalizeSoftRules(styling.PreferenceSet{
			ValidPairs:      profile.ValidPairs,
			AvoidPairs:      profile.AvoidPairs,
			CoreDirections:  profile.CoreDirections,
			ColorRules:      profile.ColorRules,
			SilhouetteRules: profile.SilhouetteRules,
			BodyTypeRules:   profile.BodyTypeRules,
			GenderNotes:     profile.GenderNotes,
		})
	}

	ruleCtx := styling.RuleContext{
		ResponseMode:     suggestion.ResponseMode,
		HasWardrobeItems: len(classified) > 0,
		Climate:          suggestion.Climate,
		Formality:        suggestion.Formality,
	}
	ranked, diag := styling.RankCandidates(parsed.Outfits, ruleCtx, styling.DefaultRuleConfig(), rules, styling.DefaultSoftScoreConfig(), styling.DefaultTopN)
	if !coverage.CanCreateComplete {
		missing := make([]string, 0, len(coverage.MissingMandatorySlots))
		for _, slot := range coverage.MissingMandatorySlots {
			missing = append(missing, string(slot))
		}
		diag.CoverageWarning = fmt.Sprintf("wardrobe is missing %s", strings.Join(missing, ", "))
	}
	outfits := styling.GroundAll(ranked, classified)

	resultBytes, err := json.Marshal(models.SuggestionResultOut{Outfits: outfits, Diagnostics: diag})
	if err != nil {
		saveSuggestionFail(db, suggestion, "Could not save the outfit result, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Suggestion: %v] Error on dumping result json: %v", payload.SuggestionID, err))
		return err
	}

	suggestion.ResultJSON = services.StrPointer(string(resultBytes))
	suggestion.Status = "completed"
	suggestion.ProcessingError = nil
	suggestion.NeedsFallback = diag.NeedsFallback
	suggestion.FallbackReason = services.StrPointer(diag.FallbackReason)
	suggestion.LLMModel = &modelString
	suggestion.LLMThoughts = &llmResponse.Thoughts
	suggestion.LLMInputTokenCount = llmResponse.InputTokenCount
	suggestion.LLMOutputTokenCount = llmResponse.OutputTokenCount
	suggestion.LLMThoughtsTokenCount = llmResponse.ThoughtsTokenCount
	suggestion.LLMTotalTokenCount = llmResponse.TotalTokenCount

	tx := db.Save(&suggestion)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving suggestion %v", payload.SuggestionID))
		return tx.Error
	}
	fmt.Printf("[Suggestion: %v] Passed: %d, Blocked: %d, Grounded: %d\n", payload.SuggestionID, diag.PassedCount, diag.BlockedCount, len(outfits))
	if fbApp != nil && suggestion.UserAccount.ReceiveNotifications {
		services.SendNotification(fbApp, db, suggestion.UserAccountID, "Your Looks Are Ready", fmt.Sprintf("We styled %d outfits for %s", len(outfits), suggestion.Occasion), map[string]string{"suggestion_id": fmt.Sprintf("%d", suggestion.ID), "type": "suggestion_completed"})
	}
	return nil
}

// HandlePreferenceRulesTask expands the style profile quiz answers into the
// free-text rule arrays used by the soft scorer.
func HandlePreferenceRulesTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.StylistLLMProvider) error {
	var payload PreferenceRulesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Profile: %v] Start Processing\n", payload.ProfileID)
	var profile models.StyleProfile
	res := db.First(&profile, payload.ProfileID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving style profile for processing %v", payload.ProfileID))
		return res.Error
	}

	model := services.Flash25
	llmResponse, err := stylist.GeneratePreferenceRules(buildProfileSummary(profile), model)
	if err != nil {
		saveRulesFail(db, profile, "Failed to build your style rules, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Profile: %v] Error on generating preference rules: %v", payload.ProfileID, err))
		return err
	}

	cleanContent := cleanAIResponseText(llmResponse.Response)
	var parsed PreferenceRulesResponse
	if err := json.Unmarshal([]byte(cleanContent), &parsed); err != nil {
		fmt.Printf("[Profile: %v] Error on parsing Gemini %s AI json %s\n", payload.ProfileID, model.String(), llmResponse.Response)
		saveRulesFail(db, profile, "Failed to read your style rules, please try again later", true)
		sentry.CaptureException(fmt.Errorf("[Profile: %v] Error on parsing Gemini %s AI json %s", payload.ProfileID, model.String(), llmResponse.Response))
		return err
	}

	profile.ValidPairs = pq.StringArray(parsed.ValidPairs)
	profile.AvoidPairs = pq.StringArray(parsed.AvoidPairs)
	profile.CoreDirections = pq.StringArray(parsed.CoreDirections)
	profile.ColorRules = pq.StringArray(parsed.ColorRules)
	profile.SilhouetteRules = pq.StringArray(parsed.SilhouetteRules)
	profile.BodyTypeRules = pq.StringArray(parsed.BodyTypeRules)
	profile.GenderNotes = pq.StringArray(parsed.GenderNotes)
	profile.RulesStatus = "generated"
	profile.RulesError = nil

	tx := db.Save(&profile)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Profile %v] Error on saving style profile at the end", payload.ProfileID))
		return tx.Error
	}
	fmt.Printf("[Profile: %v] Rules generated successfully..\n", payload.ProfileID)
	return nil
}

func wardrobeRecords(items []models.WardrobeItem) []styling.WardrobeRecord {
	records := make([]styling.WardrobeRecord, 0, len(items))
	for _, item := range items {
		record := styling.WardrobeRecord{
			ID:        strconv.FormatUint(uint64(item.ID), 10),
			Name:      item.Name,
			ItemType:  item.ItemType,
			Category:  item.Category,
			Color:     item.Color,
			Fabric:    item.Fabric,
			Fit:       item.Fit,
			Formality: item.Formality,
			Seasons:   item.Seasons,
			StyleTags: item.AestheticTags,
		}
		if item.ImageKey != nil {
			record.ImageKey = *item.ImageKey
		}
		records = append(records, record)
	}
	return records
}

func buildSuggestionPrompt(suggestion models.OutfitSuggestion, items []styling.ClassifiedItem, coverage styling.CoverageProfile, profile models.StyleProfile, hasProfile bool) string {
	var b strings.Builder
	b.WriteString("Request:\n")
	fmt.Fprintf(&b, "occasion: %s\nclimate: %s\nformality: %s\n", suggestion.Occasion, suggestion.Climate, suggestion.Formality)
	if hasProfile {
		if profile.Gender != nil {
			fmt.Fprintf(&b, "gender: %s\n", *profile.Gender)
		}
		if profile.BodyType != nil {
			fmt.Fprintf(&b, "body type: %s\n", *profile.BodyType)
		}
		if len(profile.Aesthetics) > 0 {
			fmt.Fprintf(&b, "preferred aesthetics: %s\n", strings.Join(profile.Aesthetics, ", "))
		}
	}

	b.WriteString("\nWardrobe inventory:\n")
	if len(items) == 0 {
		b.WriteString("(empty, suggest generic pieces without item ids)\n")
	}
	for _, item := range items {
		fmt.Fprintf(&b, "id=%s name=%q category=%s", item.ID, item.Name, item.Category)
		if item.Subcategory != "" {
			fmt.Fprintf(&b, " subcategory=%s", item.Subcategory)
		}
		if item.Color != "" {
			fmt.Fprintf(&b, " color=%s", item.Color)
		}
		if item.Fabric != "" {
			fmt.Fprintf(&b, " fabric=%s", item.Fabric)
		}
		if len(item.AestheticTags) > 0 {
			fmt.Fprintf(&b, " tags=%s", strings.Join(item.AestheticTags, ","))
		}
		b.WriteString("\n")
	}

	if !coverage.CanCreateComplete {
		missing := make([]string, 0, len(coverage.MissingMandatorySlots))
		for _, slot := range coverage.MissingMandatorySlots {
			missing = append(missing, string(slot))
		}
		fmt.Fprintf(&b, "\nNote: the wardrobe has no items for: %s. Suggest generic pieces for those slots and mention they are not owned.\n", strings.Join(missing, ", "))
	}
	return b.String()
}

func buildProfileSummary(profile models.StyleProfile) string {
	var b strings.Builder
	b.WriteString("User style profile:\n")
	if profile.Gender != nil {
		fmt.Fprintf(&b, "gender: %s\n", *profile.Gender)
	}
	if profile.BodyType != nil {
		fmt.Fprintf(&b, "body type: %s\n", *profile.BodyType)
	}
	if profile.Climate != "" {
		fmt.Fprintf(&b, "usual climate: %s\n", profile.Climate)
	}
	if profile.Formality != "" {
		fmt.Fprintf(&b, "usual formality: %s\n", profile.Formality)
	}
	if len(profile.Aesthetics) > 0 {
		fmt.Fprintf(&b, "preferred aesthetics: %s\n", strings.Join(profile.Aesthetics, ", "))
	}
	return b.String()
}

func saveExtractionFail(db *gorm.DB, item models.WardrobeItem, message string, shouldRetry bool) error {
	item.ExtractionRetryCount = item.ExtractionRetryCount + 1
	item.ExtractionError = services.StrPointer(message)
	if !shouldRetry || item.ExtractionRetryCount >= 3 {
		item.ExtractionStatus = "failed"
	}
	tx := db.Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Item %v] Error on saving wardrobe item for failed status", item.ID))
		return tx.Error
	}
	return nil
}

func saveSuggestionFail(db *gorm.DB, suggestion models.OutfitSuggestion, message string, shouldRetry bool) error {
	suggestion.RetryCount = suggestion.RetryCount + 1
	suggestion.ProcessingError = services.StrPointer(message)
	if !shouldRetry || suggestion.RetryCount >= 3 {
		suggestion.Status = "failed"
	}
	tx := db.Save(&suggestion)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Suggestion %v] Error on saving suggestion for failed status", suggestion.ID))
		return tx.Error
	}
	return nil
}

func saveRulesFail(db *gorm.DB, profile models.StyleProfile, message string, shouldRetry bool) error {
	profile.RulesRetryCount = profile.RulesRetryCount + 1
	profile.RulesError = services.StrPointer(message)
	if !shouldRetry || profile.RulesRetryCount >= 3 {
		profile.RulesStatus = "failed"
	}
	tx := db.Save(&profile)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Profile %v] Error on saving style profile for failed status", profile.ID))
		return tx.Error
	}
	return nil
}

// ScheduledStyleAlertTask nudges users who have a usable wardrobe to ask for
// an outfit of the day.
func ScheduledStyleAlertTask(ctx context.Context, t *asynq.Task, db *gorm.DB, fbApp *firebase.App) error {
	fmt.Printf("[Style Alert] Processing for all users\n")

	var users []models.UserAccount
	result := db.Where("banned = ? AND receive_notifications = ?", false, true).Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Style Alert] Error fetching users: %v", result.Error))
		return result.Error
	}

	fmt.Printf("[Style Alert] Found %d users to send notifications\n", len(users))

	for _, user := range users {
		err := sendStyleAlertToUser(ctx, db, fbApp, user.ID)
		if err != nil {
			fmt.Printf("[Style Alert] Failed to send to user %d: %v\n", user.ID, err)
			sentry.CaptureException(fmt.Errorf("[Style Alert] Failed to send to user %d: %v", user.ID, err))
			continue
		}
		time.Sleep(1 * time.Second) // To avoid hitting rate limits
	}

	return nil
}

func sendStyleAlertToUser(ctx context.Context, db *gorm.DB, fbApp *firebase.App, userID uint) error {
	var items []models.WardrobeItem
	result := db.Where("owner_id = ? AND extraction_status = ?", userID, "extracted").Find(&items)
	if result.Error != nil {
		return fmt.Errorf("error fetching wardrobe items: %v", result.Error)
	}
	if len(items) == 0 {
		fmt.Printf("[Style Alert] No extracted items found for user %d\n", userID)
		return nil
	}

	// Pick a random item to feature
	randomItem := items[time.Now().Unix()%int64(len(items))]

	title := "What to wear today?"
	message := fmt.Sprintf("Build a look around your %s", randomItem.Name)
	if len(message) > 100 {
		message = message[:97] + "..."
	}

	fmt.Println("[Style Alert] Sending notification to user", userID, "featuring item", randomItem.ID)
	services.SendNotification(fbApp, db, userID, title, message, map[string]string{"item_id": fmt.Sprintf("%d", randomItem.ID), "type": "style_alert"})

	return nil
}
