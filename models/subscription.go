package models

import (
	"github.com/go-playground/validator"
)

type Subscription string

const (
	Free    Subscription = "free"
	Trial   Subscription = "trial"
	Pro     Subscription = "pro"
	ProPlus Subscription = "pro_plus"
)

func (s *Subscription) Scan(value interface{}) error {
	*s = Subscription(value.(string))
	return nil
}

func (s Subscription) Value() (string, error) {
	return string(s), nil
}

func ValidateSubscription(fl validator.FieldLevel) bool {
	return ValidateSubscriptionRaw(fl.Field().String())
}

func ValidateSubscriptionRaw(value string) bool {
	switch Subscription(value) {
	case Free, Trial, Pro, ProPlus:
		return true
	}
	return false
}
