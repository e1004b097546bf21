package models

import (
	"github.com/go-playground/validator"
)

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func (p *Platform) Scan(value interface{}) error {
	*p = Platform(value.(string))
	return nil
}

func (p Platform) Value() string {
	return string(p)
}

func ScanPlatform(value string) Platform {
	return Platform(value)
}

func ValidatePlatform(fl validator.FieldLevel) bool {
	return ValidatePlatformRaw(fl.Field().String())
}

func ValidatePlatformRaw(value string) bool {
	switch Platform(value) {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}
