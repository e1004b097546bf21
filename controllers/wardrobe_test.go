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
	"lookbookapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func TestCreateWardrobeItemInvalidInput(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	// FileName missing
	reqBody := CreateWardrobeItemIn{
		Name:     "Test Shirt",
		Category: "top",
	}

	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestCreateWardrobeItemBadFileType(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	reqBody := CreateWardrobeItemIn{
		Name:     "Test Shirt",
		FileName: stringPtr("shirt.exe"),
		Category: "top",
	}

	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Unsupported image format", response["error"])
}

func TestCreateWardrobeItemUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	test.FakeUser(db)

	reqBody := CreateWardrobeItemIn{
		Name:     "Test Shirt",
		FileName: stringPtr("shirt.jpg"),
		Category: "top",
	}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", "", reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateWardrobeItemFreeLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	for i := 0; i < 10; i++ {
		test.FakeWardrobeItem(db, user.ID, fmt.Sprintf("Item %v", i), "top", "white")
	}

	reqBody := CreateWardrobeItemIn{
		Name:     "One Too Many",
		FileName: stringPtr("extra.jpg"),
		Category: "top",
	}
	req := test.NewJSONAuthRequest("POST", "/wardrobe/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestListWardrobeItemsOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{MockUrl: "https://fakecache.com/item.jpg"})
	user := test.FakeUser(db)

	item1 := test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")
	item2 := test.FakeWardrobeItem(db, user.ID, "Blue Jeans", "bottom", "blue")

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "Expected status code 200 OK, got %d: %s", rec.Code, rec.Body.String())

	var response WardrobeListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Items, 2)
	// newest first
	require.Equal(t, item2.Name, response.Items[0].Name)
	require.Equal(t, item1.Name, response.Items[1].Name)
	require.NotNil(t, response.Items[0].Uri)
	require.Equal(t, "https://fakecache.com/item.jpg", *response.Items[0].Uri)
}

func TestListWardrobeItemsCategoryFilter(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")
	test.FakeWardrobeItem(db, user.ID, "Blue Jeans", "bottom", "blue")

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list?category=bottom", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response WardrobeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Items, 1)
	require.Equal(t, "Blue Jeans", response.Items[0].Name)
}

func TestListWardrobeItemsEmpty(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)

	req := test.NewJSONAuthRequest("GET", "/wardrobe/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response WardrobeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Items, 0)
}

func TestGetWardrobeItemNotOwned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	otherUser := test.FakeUserV2(db, "Other", "other@example.com")
	item := test.FakeWardrobeItem(db, otherUser.ID, "Not Yours", "top", "black")

	req := test.NewJSONAuthRequest("GET", fmt.Sprintf("/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateWardrobeItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")

	reqBody := UpdateWardrobeItemIn{
		Name:    stringPtr("Favorite White Tee"),
		Color:   stringPtr("off-white"),
		Seasons: []string{"summer"},
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedItem models.WardrobeItem
	require.NoError(t, db.First(&updatedItem, item.ID).Error)
	assert.Equal(t, "Favorite White Tee", updatedItem.Name)
	assert.Equal(t, "off-white", updatedItem.Color)
	// untouched fields survive the partial update
	assert.Equal(t, "top", updatedItem.Category)
	require.Len(t, updatedItem.Seasons, 1)
	assert.Equal(t, "summer", updatedItem.Seasons[0])
}

func TestDeleteWardrobeItemOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/wardrobe/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.WardrobeItem{}).Where("id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRetryExtractionAlreadyPending(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{}, nil, nil, nil, &test.URLCacheMock{})
	user := test.FakeUser(db)
	item := test.FakeWardrobeItem(db, user.ID, "White Tee", "top", "white")
	item.ExtractionStatus = "pending"
	require.NoError(t, db.Save(item).Error)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/wardrobe/%v/retry-extraction", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}
