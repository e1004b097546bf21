package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"google.golang.org/api/idtoken"
)

type GoogleServiceProvider interface {
	ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
	GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error)
}

type GoogleService struct {
}

func (gs GoogleService) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, idToken, audience)
}

// GetUserSubscriptionStatus fetches the subscriber record from RevenueCat.
func (gs GoogleService) GetUserSubscriptionStatus(ctx context.Context, appUserId string) ([]byte, error) {
	url := fmt.Sprintf("https://api.revenuecat.com/v1/subscribers/%s", appUserId)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", os.Getenv("RC_API_KEY")))

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("RevenueCat subscriber fetch failed:", err)
		return nil, err
	}
	defer res.Body.Close()

	return io.ReadAll(res.Body)
}
