package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"lookbookapi/dbhelper"
	"lookbookapi/models"
	"lookbookapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")
	test.FakeWardrobeItem(db, user.ID, "Blue Jeans", "bottom", "blue")

	req := test.NewJSONAuthRequest("GET", "/auth/me", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response models.UserMeInfoOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, strconv.FormatUint(uint64(user.ID), 10), response.Id)
	assert.Equal(t, user.Name, response.Name)
	assert.Equal(t, user.Email, response.Email)
	assert.Equal(t, int64(2), response.WardrobeItemCount)
	assert.False(t, response.StyleProfileSet)
}

func TestMeStyleProfileSet(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	profile := models.StyleProfile{
		UserAccountID: user.ID,
		Climate:       "mild",
		Formality:     "casual",
		RulesStatus:   "pending",
	}
	require.NoError(t, db.Create(&profile).Error)

	req := test.NewJSONAuthRequest("GET", "/auth/me", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response models.UserMeInfoOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.StyleProfileSet)
	assert.Equal(t, int64(0), response.WardrobeItemCount)
}

func TestMeUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})

	req := test.NewJSONAuthRequest("GET", "/auth/me", "", "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettingsUpdate(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	reqBody := models.UserSettingsIn{ReceiveNotifications: false}
	req := test.NewJSONAuthRequest("POST", "/auth/settings", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedUser models.UserAccount
	require.NoError(t, db.First(&updatedUser, user.ID).Error)
	assert.False(t, updatedUser.ReceiveNotifications)
}

func TestRegisterPush(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	reqBody := models.UserPushIn{
		Token:    "new-device-token",
		Platform: "ios",
	}
	req := test.NewJSONAuthRequest("POST", "/auth/register-push", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ? and token = ?", user.ID, "new-device-token").Count(&count)
	assert.Equal(t, int64(1), count)

	// idempotent for the same token
	req = test.NewJSONAuthRequest("POST", "/auth/register-push", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	db.Model(&models.UserPushToken{}).Where("user_account_id = ? and token = ?", user.ID, "new-device-token").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegisterPushBadPlatform(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	reqBody := models.UserPushIn{
		Token:    "new-device-token",
		Platform: "blackberry",
	}
	req := test.NewJSONAuthRequest("POST", "/auth/register-push", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutRemovesPushToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	// FakeUser seeds one active android push token
	var seeded models.UserPushToken
	require.NoError(t, db.Where("user_account_id = ?", user.ID).First(&seeded).Error)

	reqBody := models.UserPushIn{Token: seeded.Token, Platform: "android"}
	req := test.NewJSONAuthRequest("POST", "/auth/logout", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.UserPushToken{}).Where("user_account_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteAccountMarksUser(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("POST", "/auth/delete-account", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedUser models.UserAccount
	require.NoError(t, db.First(&updatedUser, user.ID).Error)
	require.NotNil(t, updatedUser.ConfirmedDeleteDate)
}
