package controllers

import (
	"fmt"
	"net/http"

	"lookbookapi/models"
	"lookbookapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type StyleProfileController struct {
}

func (controller *StyleProfileController) StyleProfileRoutes(g *echo.Group) {
	g.GET("", controller.GetProfile)
	g.PUT("", controller.UpsertProfile)
}

func (controller *StyleProfileController) GetProfile(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var profile models.StyleProfile
	result := db.Where("user_account_id = ?", user.ID).Limit(1).Find(&profile)
	if result.Error != nil {
		return echo.ErrInternalServerError
	}
	if result.RowsAffected == 0 {
		return echo.ErrNotFound
	}
	return c.JSON(http.StatusOK, profile)
}

func (controller *StyleProfileController) UpsertProfile(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	var req models.StyleProfileIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	var profile models.StyleProfile
	result := db.Where("user_account_id = ?", user.ID).Limit(1).Find(&profile)
	if result.Error != nil {
		return echo.ErrInternalServerError
	}
	profile.UserAccountID = user.ID
	profile.Gender = req.Gender
	profile.BodyType = req.BodyType
	profile.Climate = req.Climate
	profile.Formality = req.Formality
	profile.Aesthetics = pq.StringArray(req.Aesthetics)
	// quiz answers changed, regenerate the preference rules
	profile.RulesStatus = "pending"
	profile.RulesRetryCount = 0
	profile.RulesError = nil
	if err := db.Save(&profile).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to save your style profile, please try again"})
	}

	task, err := tasks.NewPreferenceRulesTask(profile.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process your profile, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process your profile, please try again"})
	}
	fmt.Println("[Queue] Preference rules task submitted, Profile ID: ", profile.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusOK, profile)
}
