package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"lookbookapi/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserMiddleware resolves the JWT subject into a UserAccount and stores it
// under "currentUser" for the handlers downstream.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		db := c.Get("__db").(*gorm.DB)
		tokenRaw := c.Get("user")
		if tokenRaw == nil {
			return echo.ErrUnauthorized
		}
		claims := tokenRaw.(*jwt.Token).Claims.(jwt.MapClaims)
		userId := claims["sub"]
		if userId == nil || userId == "" {
			fmt.Println("Token without subject claim, rejecting")
			return echo.ErrUnauthorized
		}

		var currentUser models.UserAccount
		err := db.First(&currentUser, userId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.ErrNotFound
		}
		if err != nil {
			fmt.Println("Failed to fetch user info", err)
			return echo.ErrInternalServerError
		}
		if currentUser.Banned {
			return echo.NewHTTPError(http.StatusLocked)
		}
		c.Set("currentUser", currentUser)
		fmt.Printf("Fetched user %s \n", currentUser.Name)
		return next(c)
	}
}
