package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"lookbookapi/dbhelper"
	"lookbookapi/models"
	"lookbookapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func TestAttributeExtractionTask(t *testing.T) {
	fmt.Println("Starting TestAttributeExtractionTask")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Setenv("GOOGLE_API_KEY", "fake-key")
	user := test.FakeUser(db)

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		ImageKey:         stringPtr(fmt.Sprintf("wardrobe/%v/shirt.jpg", user.ID)),
		ExtractionStatus: "pending",
	}
	db.Create(&item)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-jpeg-bytes"))
	}))
	defer mockServer.Close()

	fakeTask, err := NewAttributeExtractionTask(item.ID)
	require.NoError(t, err)
	awsServiceMock := &test.AWSProviderMock{MockUrl: mockServer.URL}

	err = HandleAttributeExtractionTask(context.Background(), fakeTask, db, test.StylistLLMMock{}, awsServiceMock, nil)
	require.NoError(t, err)

	var updatedItem models.WardrobeItem
	require.NoError(t, db.First(&updatedItem, item.ID).Error)
	assert.Equal(t, "extracted", updatedItem.ExtractionStatus)
	assert.Equal(t, "White Linen Shirt", updatedItem.Name)
	assert.Equal(t, "top", updatedItem.Category)
	assert.Equal(t, "shirt", updatedItem.Subcategory)
	assert.Equal(t, "white", updatedItem.Color)
	assert.Equal(t, "linen", updatedItem.Fabric)
	assert.Equal(t, "smart_casual", updatedItem.Formality)
	assert.True(t, test.Contains(updatedItem.Seasons, "summer"))
	assert.True(t, test.Contains(updatedItem.AestheticTags, "minimal"))
	assert.Equal(t, int32(10), updatedItem.LLMInputTokenCount)
	assert.Equal(t, int32(11), updatedItem.LLMTotalTokenCount)
}

func TestAttributeExtractionTaskKeepsUserName(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Setenv("GOOGLE_API_KEY", "fake-key")
	user := test.FakeUser(db)

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Name:             "My favorite shirt",
		ImageKey:         stringPtr(fmt.Sprintf("wardrobe/%v/shirt.jpg", user.ID)),
		ExtractionStatus: "pending",
	}
	db.Create(&item)

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("fake-jpeg-bytes"))
	}))
	defer mockServer.Close()

	fakeTask, err := NewAttributeExtractionTask(item.ID)
	require.NoError(t, err)

	err = HandleAttributeExtractionTask(context.Background(), fakeTask, db, test.StylistLLMMock{}, &test.AWSProviderMock{MockUrl: mockServer.URL}, nil)
	require.NoError(t, err)

	var updatedItem models.WardrobeItem
	require.NoError(t, db.First(&updatedItem, item.ID).Error)
	assert.Equal(t, "extracted", updatedItem.ExtractionStatus)
	assert.Equal(t, "My favorite shirt", updatedItem.Name)
}

func TestAttributeExtractionTaskSkipsWithoutImage(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	os.Setenv("GOOGLE_API_KEY", "fake-key")
	user := test.FakeUser(db)

	item := models.WardrobeItem{
		OwnerID:          user.ID,
		Name:             "Typed In Item",
		ExtractionStatus: "pending",
	}
	db.Create(&item)

	fakeTask, err := NewAttributeExtractionTask(item.ID)
	require.NoError(t, err)

	err = HandleAttributeExtractionTask(context.Background(), fakeTask, db, test.StylistLLMMock{}, &test.AWSProviderMock{}, nil)
	require.NoError(t, err)

	var updatedItem models.WardrobeItem
	require.NoError(t, db.First(&updatedItem, item.ID).Error)
	assert.Equal(t, "skipped", updatedItem.ExtractionStatus)
	assert.Equal(t, "Typed In Item", updatedItem.Name)
}

func TestOutfitSuggestionTask(t *testing.T) {
	fmt.Println("Starting TestOutfitSuggestionTask")
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")
	test.FakeWardrobeItem(db, user.ID, "Blue Jeans", "bottom", "blue")
	test.FakeWardrobeItem(db, user.ID, "White Sneakers", "shoes", "white")

	suggestion := models.OutfitSuggestion{
		UserAccountID: user.ID,
		Occasion:      "weekend brunch",
		Climate:       "mild",
		Formality:     "casual",
		ResponseMode:  "visual_outfit",
		Status:        "pending",
	}
	db.Create(&suggestion)

	fakeTask, err := NewOutfitSuggestionTask(suggestion.ID)
	require.NoError(t, err)

	err = HandleOutfitSuggestionTask(context.Background(), fakeTask, db, test.StylistLLMMock{}, nil)
	require.NoError(t, err)

	var updatedSuggestion models.OutfitSuggestion
	require.NoError(t, db.First(&updatedSuggestion, suggestion.ID).Error)
	assert.Equal(t, "completed", updatedSuggestion.Status)
	assert.False(t, updatedSuggestion.NeedsFallback)
	require.NotNil(t, updatedSuggestion.DraftsJSON)
	require.NotNil(t, updatedSuggestion.ResultJSON)
	assert.Equal(t, int32(10), updatedSuggestion.LLMInputTokenCount)

	var result models.SuggestionResultOut
	require.NoError(t, json.Unmarshal([]byte(*updatedSuggestion.ResultJSON), &result))
	assert.Equal(t, 1, result.Diagnostics.PassedCount)
	assert.Equal(t, 0, result.Diagnostics.BlockedCount)
	require.Len(t, result.Outfits, 1)
	assert.Equal(t, "Weekend Casual", result.Outfits[0].Title)
	require.NotEmpty(t, result.Outfits[0].Items)
	// grounded items carry the stored object key, the API swaps it for a
	// presigned URL on read
	for _, outfitItem := range result.Outfits[0].Items {
		assert.NotEmpty(t, outfitItem.ImageURL)
		assert.NotEmpty(t, outfitItem.ID)
	}
}

func TestOutfitSuggestionTaskAlreadyCompleted(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	suggestion := models.OutfitSuggestion{
		UserAccountID: user.ID,
		Occasion:      "office",
		ResponseMode:  "visual_outfit",
		Status:        "completed",
		ResultJSON:    stringPtr(`{"outfits":[],"diagnostics":{"passed_count":0,"blocked_count":0,"needs_fallback":false}}`),
	}
	db.Create(&suggestion)

	fakeTask, err := NewOutfitSuggestionTask(suggestion.ID)
	require.NoError(t, err)

	err = HandleOutfitSuggestionTask(context.Background(), fakeTask, db, test.StylistLLMMock{}, nil)
	require.NoError(t, err)

	var updatedSuggestion models.OutfitSuggestion
	require.NoError(t, db.First(&updatedSuggestion, suggestion.ID).Error)
	assert.Equal(t, "completed", updatedSuggestion.Status)
	// untouched, the task bailed out before calling the model
	assert.Equal(t, int32(0), updatedSuggestion.LLMInputTokenCount)
}

func TestPreferenceRulesTask(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	user := test.FakeUser(db)

	profile := models.StyleProfile{
		UserAccountID: user.ID,
		Gender:        stringPtr("male"),
		Climate:       "mild",
		Formality:     "smart_casual",
		Aesthetics:    []string{"minimal", "classic"},
		RulesStatus:   "pending",
	}
	db.Create(&profile)

	fakeTask, err := NewPreferenceRulesTask(profile.ID)
	require.NoError(t, err)

	err = HandlePreferenceRulesTask(context.Background(), fakeTask, db, test.StylistLLMMock{})
	require.NoError(t, err)

	var updatedProfile models.StyleProfile
	require.NoError(t, db.First(&updatedProfile, profile.ID).Error)
	assert.Equal(t, "generated", updatedProfile.RulesStatus)
	assert.Len(t, updatedProfile.ValidPairs, 2)
	assert.Len(t, updatedProfile.AvoidPairs, 1)
	assert.True(t, test.Contains(updatedProfile.CoreDirections, "lean into minimal silhouettes"))
}
