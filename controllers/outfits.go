package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"lookbookapi/models"
	"lookbookapi/services"
	"lookbookapi/styling"
	"lookbookapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CreateSuggestionIn struct {
	Occasion     string `json:"occasion" validate:"omitempty,max=200"`
	Climate      string `json:"climate" validate:"omitempty,oneof=hot cold mild"`
	Formality    string `json:"formality" validate:"omitempty,oneof=casual smart_casual business formal"`
	ResponseMode string `json:"response_mode" validate:"required,oneof=visual_outfit text_advice"`
}

type SuggestionStatusOut struct {
	ID             uint                        `json:"id"`
	Status         string                      `json:"status"`
	Occasion       string                      `json:"occasion"`
	ResponseMode   string                      `json:"response_mode"`
	NeedsFallback  bool                        `json:"needs_fallback"`
	FallbackReason *string                     `json:"fallback_reason,omitempty"`
	Result         *models.SuggestionResultOut `json:"result,omitempty"`
	CreatedAt      string                      `json:"created_at"`
}

type OutfitController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *OutfitController) OutfitRoutes(g *echo.Group) {
	g.POST("/suggest", controller.CreateSuggestion)
	g.GET("/list", controller.ListSuggestions)
	g.GET("/coverage", controller.WardrobeCoverage)
	g.GET("/:suggestionId", controller.GetSuggestion)
}

func (controller *OutfitController) CreateSuggestion(c echo.Context) error {
	var req CreateSuggestionIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if user.Subscription == nil || *user.Subscription == string(models.Free) {
		var dailySuggestionCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.OutfitSuggestion{}).Where("user_account_id = ? AND DATE(created_at) = ?", user.ID, today).Count(&dailySuggestionCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get suggestion data"})
		}
		fmt.Printf("[User %v] Free plan, daily suggestion count: %v", user.ID, dailySuggestionCount)
		if dailySuggestionCount >= 3 {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "You have reached the free limit of 3 daily looks, please subscribe"})
		}
	}

	if user.EnforcedDailySuggestionLimit != nil {
		var dailySuggestionCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.OutfitSuggestion{}).Where("user_account_id = ? AND DATE(created_at) = ?", user.ID, today).Count(&dailySuggestionCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get suggestion data"})
		}
		fmt.Printf("[User %v] Enforced daily limit, suggestion count: %v", user.ID, dailySuggestionCount)
		if dailySuggestionCount >= int64(*user.EnforcedDailySuggestionLimit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily looks. Please wait for the next day.", dailySuggestionCount)})
		}
	}

	if req.ResponseMode == "visual_outfit" {
		var itemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&itemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		if itemCount == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Add some wardrobe items first, or ask for text advice instead"})
		}
	}

	suggestion := models.OutfitSuggestion{
		UserAccountID: user.ID,
		Occasion:      req.Occasion,
		Climate:       req.Climate,
		Formality:     req.Formality,
		ResponseMode:  req.ResponseMode,
		Status:        "pending",
	}
	if err := db.Create(&suggestion).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create suggestion, please try again"})
	}

	task, err := tasks.NewOutfitSuggestionTask(suggestion.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not start styling, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not start styling, please try again"})
	}
	fmt.Println("[Queue] Outfit suggestion task submitted, Suggestion ID: ", suggestion.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusCreated, SuggestionStatusOut{
		ID:           suggestion.ID,
		Status:       suggestion.Status,
		Occasion:     suggestion.Occasion,
		ResponseMode: suggestion.ResponseMode,
		CreatedAt:    suggestion.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// populatePresignedOutfitImages swaps the stored object keys inside a
// grounded result for presigned read URLs. Items whose presign fails keep an
// empty URL rather than failing the whole response.
func (controller *OutfitController) populatePresignedOutfitImages(ctx context.Context, result *models.SuggestionResultOut) {
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	for oi := range result.Outfits {
		for ii := range result.Outfits[oi].Items {
			objectKey := result.Outfits[oi].Items[ii].ImageURL
			if objectKey == "" {
				continue
			}
			url, err := controller.URLCache.GetReadURL(ctx, objectKey)
			if err != nil {
				log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("failure_type", "cache_system")
					scope.SetExtra("objectKey", objectKey)
					sentry.CaptureException(err)
				})
				fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
				if fallbackErr != nil {
					log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
					sentry.CaptureException(fallbackErr)
					url = ""
				} else {
					url = fallbackUrl
				}
			}
			result.Outfits[oi].Items[ii].ImageURL = url
		}
	}
}

func suggestionStatusOut(suggestion models.OutfitSuggestion, result *models.SuggestionResultOut) SuggestionStatusOut {
	return SuggestionStatusOut{
		ID:             suggestion.ID,
		Status:         suggestion.Status,
		Occasion:       suggestion.Occasion,
		ResponseMode:   suggestion.ResponseMode,
		NeedsFallback:  suggestion.NeedsFallback,
		FallbackReason: suggestion.FallbackReason,
		Result:         result,
		CreatedAt:      suggestion.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *OutfitController) GetSuggestion(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var suggestionId uint
	if err := echo.PathParamsBinder(c).Uint("suggestionId", &suggestionId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var suggestion models.OutfitSuggestion
	result := db.Where("id = ? AND user_account_id = ?", suggestionId, user.ID).Limit(1).Find(&suggestion)
	if result.Error != nil {
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	var resultOut *models.SuggestionResultOut
	if suggestion.Status == "completed" && suggestion.ResultJSON != nil {
		var parsed models.SuggestionResultOut
		if err := json.Unmarshal([]byte(*suggestion.ResultJSON), &parsed); err != nil {
			sentry.CaptureException(err)
			fmt.Println("Error parsing stored suggestion result", suggestion.ID, err)
			return echo.ErrInternalServerError
		}
		controller.populatePresignedOutfitImages(c.Request().Context(), &parsed)
		resultOut = &parsed
	}

	return c.JSON(http.StatusOK, suggestionStatusOut(suggestion, resultOut))
}

func (controller *OutfitController) ListSuggestions(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var suggestions []models.OutfitSuggestion
	if err := db.Where("user_account_id = ?", user.ID).Order("id desc").Limit(20).Find(&suggestions).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch suggestions"})
	}

	responses := make([]SuggestionStatusOut, 0, len(suggestions))
	for _, suggestion := range suggestions {
		responses = append(responses, suggestionStatusOut(suggestion, nil))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"suggestions": responses,
	})
}

func (controller *OutfitController) WardrobeCoverage(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Order("id asc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe items"})
	}

	records := make([]styling.WardrobeRecord, 0, len(items))
	for _, item := range items {
		imageKey := ""
		if item.ImageKey != nil {
			imageKey = *item.ImageKey
		}
		records = append(records, styling.WardrobeRecord{
			ID:        UIntToStr(item.ID),
			Name:      item.Name,
			ItemType:  item.ItemType,
			Category:  item.Category,
			Color:     item.Color,
			Fabric:    item.Fabric,
			Fit:       item.Fit,
			Formality: item.Formality,
			Seasons:   item.Seasons,
			StyleTags: item.AestheticTags,
			ImageKey:  imageKey,
		})
	}
	profile := styling.BuildCoverageProfile(styling.ClassifyAll(records))

	return c.JSON(http.StatusOK, profile)
}
