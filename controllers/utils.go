package controllers

import (
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

func UIntToStr(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func IfThenElse(condition bool, a interface{}, b interface{}) interface{} {
	if condition {
		return a
	}
	return b
}

// GenerateUserToken signs a short-lived access token for the user. The
// lifetime is caller-controlled so refresh and fresh sign-in can differ.
func GenerateUserToken(userPk string, c echo.Context, hours uint64) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userPk,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(hours) * time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		c.Logger().Errorf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return signed
}

func GenerateRefreshToken(userPk string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = userPk
	claims["exp"] = time.Now().Add(time.Hour * 24 * 30 * 12).Unix()
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
