package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"lookbookapi/models"
	"lookbookapi/services"
	"lookbookapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type CreateWardrobeItemIn struct {
	Name        string  `json:"name" validate:"omitempty,max=100"`
	FileName    *string `json:"file_name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    string  `json:"category" validate:"omitempty,oneof=top bottom dress outerwear shoes accessory"`
}

type UpdateWardrobeItemIn struct {
	Name          *string  `json:"name" validate:"omitempty,max=100"`
	Description   *string  `json:"description" validate:"omitempty,max=500"`
	Category      *string  `json:"category" validate:"omitempty,oneof=top bottom dress outerwear shoes accessory"`
	Color         *string  `json:"color" validate:"omitempty,max=50"`
	Formality     *string  `json:"formality" validate:"omitempty,max=50"`
	Seasons       []string `json:"seasons"`
	AestheticTags []string `json:"aesthetic_tags"`
}

type WardrobeItemResponse struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	Category         string   `json:"category"`
	Subcategory      string   `json:"subcategory"`
	ItemType         string   `json:"item_type"`
	Color            string   `json:"color"`
	Fabric           string   `json:"fabric"`
	Fit              string   `json:"fit"`
	Formality        string   `json:"formality"`
	Silhouette       string   `json:"silhouette"`
	Seasons          []string `json:"seasons"`
	AestheticTags    []string `json:"aesthetic_tags"`
	ExtractionStatus string   `json:"extraction_status"`
	Uri              *string  `json:"uri,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type WardrobeItemCreatedResponse struct {
	Item          WardrobeItemResponse `json:"item"`
	FileUploadUrl string               `json:"file_upload_url"`
}

type WardrobeListResponse struct {
	Items []WardrobeItemResponse `json:"items"`
}

type WardrobeController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateItem)
	g.GET("/list", controller.ListItems)
	g.GET("/:itemId", controller.GetItem)
	g.PUT("/:itemId", controller.UpdateItem)
	g.DELETE("/:itemId", controller.DeleteItem)
	g.POST("/:itemId/retry-extraction", controller.RetryExtraction)
}

func wardrobeItemResponse(item models.WardrobeItem, uri *string) WardrobeItemResponse {
	return WardrobeItemResponse{
		ID:               item.ID,
		Name:             item.Name,
		Description:      item.Description,
		Category:         item.Category,
		Subcategory:      item.Subcategory,
		ItemType:         item.ItemType,
		Color:            item.Color,
		Fabric:           item.Fabric,
		Fit:              item.Fit,
		Formality:        item.Formality,
		Silhouette:       item.Silhouette,
		Seasons:          item.Seasons,
		AestheticTags:    item.AestheticTags,
		ExtractionStatus: item.ExtractionStatus,
		Uri:              uri,
		CreatedAt:        item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateWardrobeItemIn
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

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating wardrobe item %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	if !services.ValidImageFileName(*req.FileName) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported image format"})
	}

	if user.Subscription == nil || *user.Subscription == string(models.Free) {
		var totalItemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Free plan, wardrobe item count: %v", user.ID, totalItemCount)
		if totalItemCount >= 10 {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "You have reached the free limit of total 10 wardrobe items, please subscribe"})
		}
	}

	if user.EnforcedDailyItemLimit != nil {
		var dailyItemCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ? AND DATE(created_at) = ?", user.ID, today).Count(&dailyItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Enforced daily limit, wardrobe item count: %v", user.ID, dailyItemCount)
		if dailyItemCount >= int64(*user.EnforcedDailyItemLimit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily items. Please wait for the next day.", dailyItemCount)})
		}
	}
	item := models.WardrobeItem{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		OwnerID:          user.ID,
		ExtractionStatus: "pending",
	}
	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	safeFileName := fmt.Sprintf("wardrobe/%v/%s", user.ID, *req.FileName)

	uploadUrl, presignErr := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
	item.ImageKey = &safeFileName
	if presignErr != nil {
		log.Printf("Unable to presign generate for %s!, %s", item.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating wardrobe item with attachment",
		})
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}
	task, err := tasks.NewAttributeExtractionTask(item.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	fmt.Println("[Queue] Attribute extraction task submitted, Item ID: ", item.ID, " Task ID: ", info.ID)

	response := WardrobeItemCreatedResponse{
		Item:          wardrobeItemResponse(item, nil),
		FileUploadUrl: uploadUrl,
	}

	return c.JSON(http.StatusCreated, response)
}

// populatePresignedItemImages takes raw wardrobe models and enriches them with presigned URLs concurrently.
// This version includes a failsafe for when the cache system itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []WardrobeItemResponse {
	if len(items) == 0 {
		return []WardrobeItemResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]WardrobeItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageKey != nil && *item.ImageKey != "" {
				objectKey := *item.ImageKey

				url, err := controller.URLCache.GetReadURL(ctx, objectKey)

				if err == nil {
					imageUrl = url
				} else {
					// Cache system itself failed, bypass it and presign directly.
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
						// imageUrl remains empty, but we don't fail the entire request.
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = wardrobeItemResponse(item, &imageUrl)
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	query := db.Where("owner_id = ?", user.ID)
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe items"})
	}
	processedResponses := controller.populatePresignedItemImages(c.Request().Context(), items)

	return c.JSON(http.StatusOK, WardrobeListResponse{Items: processedResponses})
}

func (controller *WardrobeController) GetItem(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if result.Error != nil {
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	responses := controller.populatePresignedItemImages(c.Request().Context(), []models.WardrobeItem{item})
	return c.JSON(http.StatusOK, responses[0])
}

func (controller *WardrobeController) UpdateItem(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var req UpdateWardrobeItemIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if result.Error != nil {
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	if req.Formality != nil {
		item.Formality = *req.Formality
	}
	if req.Seasons != nil {
		item.Seasons = pq.StringArray(req.Seasons)
	}
	if req.AestheticTags != nil {
		item.AestheticTags = pq.StringArray(req.AestheticTags)
	}
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item, please try again"})
	}

	return c.JSON(http.StatusOK, wardrobeItemResponse(item, nil))
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Delete(&models.WardrobeItem{})
	if result.Error != nil {
		log.Println(result.Error)
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}
	fmt.Println("Wardrobe item deleted ", itemId, " user ", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
	})
}

func (controller *WardrobeController) RetryExtraction(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if result.Error != nil {
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}
	if item.ExtractionStatus == "processing" || item.ExtractionStatus == "pending" {
		return c.JSON(http.StatusConflict, map[string]string{"message": "Extraction is already in progress"})
	}

	item.ExtractionStatus = "pending"
	item.ExtractionRetryCount = 0
	item.ExtractionError = nil
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}

	task, err := tasks.NewAttributeExtractionTask(item.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process item, please try again"})
	}
	fmt.Println("[Queue] Attribute extraction retry submitted, Item ID: ", item.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "queued",
		"status":  item.ExtractionStatus,
	})
}
