package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"lookbookapi/dbhelper"
	"lookbookapi/models"
	"lookbookapi/styling"
	"lookbookapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSuggestionInvalidInput(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	// response_mode missing
	reqBody := CreateSuggestionIn{
		Occasion: "weekend brunch",
	}
	req := test.NewJSONAuthRequest("POST", "/outfits/suggest", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestCreateSuggestionEmptyWardrobe(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	reqBody := CreateSuggestionIn{
		Occasion:     "weekend brunch",
		ResponseMode: "visual_outfit",
	}
	req := test.NewJSONAuthRequest("POST", "/outfits/suggest", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Add some wardrobe items first, or ask for text advice instead", response["error"])
}

func TestCreateSuggestionFreeDailyLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	for i := 0; i < 3; i++ {
		suggestion := models.OutfitSuggestion{
			UserAccountID: user.ID,
			Occasion:      fmt.Sprintf("look %v", i),
			ResponseMode:  "text_advice",
			Status:        "completed",
		}
		require.NoError(t, db.Create(&suggestion).Error)
	}

	reqBody := CreateSuggestionIn{
		Occasion:     "one more",
		ResponseMode: "text_advice",
	}
	req := test.NewJSONAuthRequest("POST", "/outfits/suggest", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestGetSuggestionPending(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	suggestion := models.OutfitSuggestion{
		UserAccountID: user.ID,
		Occasion:      "weekend brunch",
		ResponseMode:  "visual_outfit",
		Status:        "pending",
	}
	require.NoError(t, db.Create(&suggestion).Error)

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/outfits/%v", suggestion.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response SuggestionStatusOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "pending", response.Status)
	assert.Nil(t, response.Result)
}

func TestGetSuggestionCompleted(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{MockUrl: "https://fakecache.com/signed.jpg"})
	user := test.FakeUser(db)

	storedResult := models.SuggestionResultOut{
		Outfits: []styling.VisualOutfit{
			{
				Title:  "Weekend Casual",
				Layout: "full",
				Items: []styling.VisualOutfitItem{
					{ID: "1", Name: "White Tee", ImageURL: fmt.Sprintf("wardrobe/%v/white-tee.jpg", user.ID), Layer: 1},
					{ID: "2", Name: "Blue Jeans", ImageURL: fmt.Sprintf("wardrobe/%v/blue-jeans.jpg", user.ID), Layer: 2},
				},
				WhyItWorks: "Clean neutrals with an easy fit.",
			},
		},
		Diagnostics: styling.Diagnostics{PassedCount: 1},
	}
	resultBytes, err := json.Marshal(storedResult)
	require.NoError(t, err)
	resultJSON := string(resultBytes)

	suggestion := models.OutfitSuggestion{
		UserAccountID: user.ID,
		Occasion:      "weekend brunch",
		ResponseMode:  "visual_outfit",
		Status:        "completed",
		ResultJSON:    &resultJSON,
	}
	require.NoError(t, db.Create(&suggestion).Error)

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/outfits/%v", suggestion.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response SuggestionStatusOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "completed", response.Status)
	require.NotNil(t, response.Result)
	require.Len(t, response.Result.Outfits, 1)
	// stored object keys are swapped for presigned URLs on read
	for _, item := range response.Result.Outfits[0].Items {
		assert.Equal(t, "https://fakecache.com/signed.jpg", item.ImageURL)
	}
}

func TestGetSuggestionNotOwned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	otherUser := test.FakeUserV2(db, "Other", "other@example.com")

	suggestion := models.OutfitSuggestion{
		UserAccountID: otherUser.ID,
		Occasion:      "office",
		ResponseMode:  "visual_outfit",
		Status:        "pending",
	}
	require.NoError(t, db.Create(&suggestion).Error)

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/outfits/%v", suggestion.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSuggestionsOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	for i := 0; i < 2; i++ {
		suggestion := models.OutfitSuggestion{
			UserAccountID: user.ID,
			Occasion:      fmt.Sprintf("look %v", i),
			ResponseMode:  "visual_outfit",
			Status:        "completed",
		}
		require.NoError(t, db.Create(&suggestion).Error)
	}

	req := test.NewJSONAuthRequest("GET", "/outfits/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response struct {
		Suggestions []SuggestionStatusOut `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Suggestions, 2)
	// newest first, no result payload in the list view
	assert.Equal(t, "look 1", response.Suggestions[0].Occasion)
	assert.Nil(t, response.Suggestions[0].Result)
}

func TestWardrobeCoverageComplete(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")
	test.FakeWardrobeItem(db, user.ID, "Blue Jeans", "bottom", "blue")
	test.FakeWardrobeItem(db, user.ID, "White Sneakers", "shoes", "white")

	req := test.NewJSONAuthRequest("GET", "/outfits/coverage", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile styling.CoverageProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.True(t, profile.CanCreateComplete)
	assert.Empty(t, profile.MissingMandatorySlots)
}

func TestWardrobeCoverageMissingSlots(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")

	req := test.NewJSONAuthRequest("GET", "/outfits/coverage", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var profile styling.CoverageProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.False(t, profile.CanCreateComplete)
	assert.NotEmpty(t, profile.MissingMandatorySlots)
}
