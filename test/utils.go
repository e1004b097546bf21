package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"lookbookapi/models"
	"lookbookapi/services"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	log.Println(JsonString(param))
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", authorizationString)
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func Int64Pointer(i int64) *int64 {
	return &i
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	user := &models.UserAccount{
		Name:      "OurName",
		Email:     "email@example.com",
		GoogleID:  "12232",
		Platform:  models.PlatformIOS,
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)

	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU-rqG1sxS8_WCF5cGZchf",
		Active:        true,
	}
	db.Save(&tokenDb)

	return user
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {

	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:      userName,
		Email:     email,
		GoogleID:  "12232",
		Platform:  models.PlatformIOS,
		LastIp:    "123.122.122.122",
		Status:    "FINISHED_AUTH",
		AvatarURL: "pictureurl",
	}
	db.Create(&user)
	return user
}

// FakeWardrobeItem creates an extracted wardrobe item with a stored image key.
func FakeWardrobeItem(db *gorm.DB, ownerId uint, name string, category string, color string) *models.WardrobeItem {
	item := &models.WardrobeItem{
		OwnerID:          ownerId,
		Name:             name,
		Category:         category,
		Color:            color,
		Formality:        "casual",
		Seasons:          []string{"summer", "spring"},
		ExtractionStatus: "extracted",
	}
	key := fmt.Sprintf("wardrobe/%v/%s.jpg", ownerId, strings.ReplaceAll(strings.ToLower(name), " ", "-"))
	item.ImageKey = &key
	db.Create(&item)
	return item
}

func Contains(items []string, lookFor string) bool {

	for i := 0; i < len(items); i++ {

		if items[i] == lookFor {
			return true
		}
	}
	return false
}

func NewRefString(data string) *string {
	return &data
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {

	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
	}}, nil

}

func (gsm GoogleServiceMock) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	data := `
	{
		"request_date": "2024-05-11T06:50:56Z",
		"request_date_ms": 1715410256322,
		"subscriber": {
		  "entitlements": {
			"pro": {
			  "expires_date": "2029-05-12T22:28:12Z",
			  "grace_period_expires_date": null,
			  "product_identifier": "lookbook_pro",
			  "product_plan_identifier": "pro-monthly",
			  "purchase_date": "2024-05-11T06:49:05Z"
			}
		  },
		  "first_seen": "2024-05-07T12:41:57Z",
		  "last_seen": "2024-05-10T20:43:21Z",
		  "management_url": "https://play.google.com/store/account/subscriptions",
		  "non_subscriptions": {},
		  "original_app_user_id": "$RCAnonymousID:60ad7a0c84694890b4b272b5654efa1f",
		  "original_application_version": null,
		  "original_purchase_date": null,
		  "other_purchases": {},
		  "subscriptions": {
			"lookbook_pro": {
			  "auto_resume_date": null,
			  "billing_issues_detected_at": null,
			  "expires_date": "2029-05-12T22:28:12Z",
			  "grace_period_expires_date": null,
			  "is_sandbox": true,
			  "original_purchase_date": "2024-05-11T06:49:05Z",
			  "period_type": "normal",
			  "product_plan_identifier": "pro-monthly",
			  "purchase_date": "2024-05-11T06:49:05Z",
			  "refunded_at": null,
			  "store": "play_store",
			  "store_transaction_id": "GPA.3308-7668-0800-70257",
			  "unsubscribe_detected_at": null
			}
		  }
		}
	  }
	  `

	return []byte(data), nil
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	// Simulate a successful upload
	return url, 204, nil
}

type URLCacheMock struct {
	MockUrl string
}

func (cacheMock *URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if cacheMock.MockUrl != "" {
		return cacheMock.MockUrl, nil
	}
	return fmt.Sprintf("https://fakecache.com/%s", objectKey), nil
}

type StylistLLMMock struct {
	DraftsResponse     string
	AttributesResponse string
	RulesResponse      string
}

func (m StylistLLMMock) GenerateOutfitDrafts(prompt string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	response := m.DraftsResponse
	if response == "" {
		response = `{
		"outfits": [
			{
			"id": "draft_1",
			"title": "Weekend Casual",
			"upper_wear": {"hint": "white tee", "category": "top", "formality": "casual"},
			"lower_wear": {"hint": "blue jeans", "category": "bottom", "formality": "casual"},
			"footwear": {"hint": "white sneakers", "category": "shoes", "formality": "casual"},
			"why_it_works": "Clean and simple combination for a relaxed day out.",
			"source": "wardrobe",
			"occasion": "weekend",
			"vibe": "casual minimal"
			}
		]
		}`
	}
	return &services.LLMResponse{
		Response:           response,
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}

func (m StylistLLMMock) ExtractItemAttributes(filePath string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	response := m.AttributesResponse
	if response == "" {
		response = `{
		"name": "white linen shirt",
		"description": "Lightweight button-down shirt",
		"category": "top",
		"subcategory": "shirt",
		"item_type": "shirt",
		"color": "white",
		"fabric": "linen",
		"fit": "relaxed",
		"formality": "smart_casual",
		"silhouette": "relaxed",
		"seasons": ["summer", "spring"],
		"aesthetic_tags": ["minimal", "coastal"]
		}`
	}
	return &services.LLMResponse{
		Response:           response,
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}

func (m StylistLLMMock) GeneratePreferenceRules(profileSummary string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	response := m.RulesResponse
	if response == "" {
		response = `{
		"valid_pairs": ["white shirt with blue jeans", "blazer with chinos"],
		"avoid_pairs": ["avoid sneakers with formal trousers"],
		"core_directions": ["lean into minimal silhouettes"],
		"color_rules": ["prefer neutral colors with one accent"],
		"silhouette_rules": ["fitted top with relaxed bottom"],
		"body_type_rules": ["structured shoulders work well"],
		"gender_notes": []
		}`
	}
	return &services.LLMResponse{
		Response:           response,
		InputTokenCount:    10,
		TotalTokenCount:    11,
		ThoughtsTokenCount: 12,
		OutputTokenCount:   13,
	}, nil
}
