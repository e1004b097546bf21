package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lookbookapi/dbhelper"
	"lookbookapi/models"
	"lookbookapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rcEvent(appUserId string, eventType string) map[string]interface{} {
	return map[string]interface{}{
		"event": map[string]interface{}{
			"app_id":               "app70fd013e95",
			"app_user_id":          appUserId,
			"country_code":         "US",
			"environment":          "SANDBOX",
			"event_timestamp_ms":   1715405366686,
			"expiration_at_ms":     1715412566686,
			"id":                   "791C890E-B8AD-46C9-8290-13EAF5F14C9F",
			"original_app_user_id": "7f680253-003b-4073-b4f3-5d1df7cd9a67",
			"period_type":          "NORMAL",
			"product_id":           "test_product",
			"store":                "PLAY_STORE",
			"type":                 eventType,
		},
	}
}

func TestWebhookBadToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	data := rcEvent(fmt.Sprint(user.ID), "INITIAL_PURCHASE")
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", "Bearer wrong-token", data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookInitialPurchase(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	// SetupTestDB pins RC_WEBHOOK_TOKEN to "fake"
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	data := rcEvent(fmt.Sprint(user.ID), "INITIAL_PURCHASE")
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", fmt.Sprintf("Bearer %s", "fake"), data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedUser models.UserAccount
	require.NoError(t, db.First(&updatedUser, user.ID).Error)
	require.NotNil(t, updatedUser.Subscription)
	assert.Equal(t, string(models.Pro), *updatedUser.Subscription)
	require.NotNil(t, updatedUser.ExpirationDate)
}

func TestWebhookTransferSkipped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	data := rcEvent(fmt.Sprint(user.ID), "TRANSFER")
	req := test.NewJSONAuthRequestCustomAuth("POST", "/webhooks/rc-subscription-webhooks", fmt.Sprintf("Bearer %s", "fake"), data)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedUser models.UserAccount
	require.NoError(t, db.First(&updatedUser, user.ID).Error)
	assert.Nil(t, updatedUser.Subscription)
}
