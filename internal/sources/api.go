package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// pageSize is large enough to fetch a brand's full history in one request
const pageSize = 10000

// APISource fetches stored reviews from the analytics backend
type APISource struct {
	baseURL string
	client  *resty.Client
}

// NewAPISource creates a new backend source for baseURL (e.g. http://localhost:5000/api)
func NewAPISource(baseURL string) *APISource {
	baseURL = strings.TrimRight(baseURL, "/")
	return &APISource{
		baseURL: baseURL,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(60*time.Second).
			SetHeader("User-Agent", "Review-Analytics/1.0"),
	}
}

func (a *APISource) GetName() string {
	return "api"
}

func (a *APISource) IsEnabled() bool {
	return a.baseURL != ""
}

func (a *APISource) FetchReviews(ctx context.Context, brand string) ([]models.Review, error) {
	if !a.IsEnabled() {
		logrus.Debug("API source disabled - no backend URL configured")
		return nil, nil
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("brand", CanonicalBrandID(brand)).
		SetQueryParams(map[string]string{
			"page":     "1",
			"per_page": fmt.Sprint(pageSize),
		}).
		Get("/brands/{brand}/reviews")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews for %s: %w", brand, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reviews API returned status %d for %s", resp.StatusCode(), brand)
	}

	reviews, err := DecodeReviews(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to decode reviews for %s: %w", brand, err)
	}

	logrus.Debugf("Fetched %d reviews for %s from backend", len(reviews), brand)
	return Dedupe(reviews), nil
}
