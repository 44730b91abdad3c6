package categories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIBackend persists keywords through the analytics backend's REST API
type APIBackend struct {
	client *resty.Client
}

// Ensure APIBackend implements Backend and Reprocessor
var (
	_ Backend     = (*APIBackend)(nil)
	_ Reprocessor = (*APIBackend)(nil)
)

type keywordsResponse struct {
	Keywords map[string][]string `json:"keywords"`
}

type keywordsRequest struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// NewAPIBackend creates a backend client for baseURL (e.g. http://localhost:5000/api)
func NewAPIBackend(baseURL string) *APIBackend {
	return &APIBackend{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "Review-Analytics/1.0"),
	}
}

// Load fetches every category's keyword list
func (a *APIBackend) Load(ctx context.Context) (map[string][]string, error) {
	var out keywordsResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/keywords")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch keywords: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("keywords API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Keywords == nil {
		out.Keywords = map[string][]string{}
	}
	return out.Keywords, nil
}

// Save upserts one category's keyword list
func (a *APIBackend) Save(ctx context.Context, category string, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(keywordsRequest{Category: category, Keywords: keywords}).
		Post("/keywords")
	if err != nil {
		return fmt.Errorf("failed to save keywords: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("keywords API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// TriggerReprocess asks the backend to re-classify stored reviews with the current keywords
func (a *APIBackend) TriggerReprocess(ctx context.Context) error {
	resp, err := a.client.R().
		SetContext(ctx).
		Post("/reprocess-reviews")
	if err != nil {
		return fmt.Errorf("failed to trigger reprocessing: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("reprocess API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
