package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/brandpulse/review-analytics/internal/analytics"
	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/lexicon"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/brandpulse/review-analytics/internal/monitoring"
	"github.com/brandpulse/review-analytics/internal/notifications"
	"github.com/brandpulse/review-analytics/internal/storage"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *storage.SQLiteStorage, *categories.Store) {
	t.Helper()

	cfg := &config.Config{
		ReportSchedule:         "weekly",
		TimeZone:               "UTC",
		Brands:                 []string{"Oh Polly"},
		MatchMode:              "word",
		TrendWindow:            6,
		TrendGranularity:       "month",
		NegativeAlertThreshold: 0.4,
	}

	s, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	store := categories.NewStore(nil)
	service := monitoring.NewService(cfg, s, notifications.NewService(cfg), store)
	return newRouter(service), s, store
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := do(router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(router, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_reviews")
}

func TestAnalyzeHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	t.Run("Inline reviews", func(t *testing.T) {
		body := `{
			"reviews": [
				{"customer name": "Ann", "date": "2025-06-30", "rating": "5", "review": "Perfect fit, true to size"},
				{"customerName": "Bob", "date": "2025-06-29", "stars": 1, "reviewText": "Terrible, runs small"},
				{"customerName": "Bob", "date": "2025-06-29", "stars": 1, "reviewText": "Terrible, runs small"}
			],
			"filters": {"rating": "all", "dateRange": {"preset": "all"}}
		}`
		rec := do(router, "POST", "/analyze", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result analytics.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 2, result.Metrics.TotalReviews)
		assert.Equal(t, 3.0, result.Metrics.AverageRating)
		assert.Equal(t, "Ann", result.Reviews[0].CustomerName)
	})

	t.Run("Rating filter", func(t *testing.T) {
		body := `{"reviews": [{"review": "good", "rating": 5}, {"review": "bad", "rating": 1}], "filters": {"rating": 1}}`
		rec := do(router, "POST", "/analyze", body)
		require.Equal(t, http.StatusOK, rec.Code)

		var result analytics.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 1, result.Metrics.TotalReviews)
	})

	t.Run("Missing input", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(router, "POST", "/analyze", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, do(router, "POST", "/analyze", `not json`).Code)
	})

	t.Run("Invalid range", func(t *testing.T) {
		body := `{"reviews": [{"review": "good"}], "filters": {"dateRange": {"preset": "custom", "from": "someday"}}}`
		assert.Equal(t, http.StatusBadRequest, do(router, "POST", "/analyze", body).Code)
	})
}

func TestInspectHandler(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := do(router, "POST", "/inspect", `{"text": "True to size and lovely"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var inspection monitoring.Inspection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inspection))
	assert.Equal(t, models.SentimentPositive, inspection.Sentiment.Classification)
	assert.Contains(t, inspection.Categories, lexicon.SizingFit)
	require.NotEmpty(t, inspection.Highlights)
	assert.Equal(t, "true to size", inspection.Highlights[0].Keyword)
}

func TestCategoryHandlers(t *testing.T) {
	router, _, store := newTestRouter(t)
	custom := "/categories/" + url.PathEscape(lexicon.Custom)

	rec := do(router, "GET", "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.KeywordCategory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, len(lexicon.DefaultCategories()))

	assert.Equal(t, http.StatusCreated, do(router, "POST", custom+"/keywords", `{"keyword": " Zipper "}`).Code)
	assert.Equal(t, http.StatusOK, do(router, "POST", custom+"/keywords", `{"keyword": "zipper"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, "POST", custom+"/keywords", `{"keyword": "  "}`).Code)
	assert.Equal(t, http.StatusNotFound, do(router, "POST", "/categories/Nope/keywords", `{"keyword": "x"}`).Code)

	kws, _ := store.Keywords(lexicon.Custom)
	assert.Equal(t, []string{"zipper"}, kws)

	assert.Equal(t, http.StatusNoContent, do(router, "DELETE", custom+"/keywords/zipper", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, "DELETE", custom+"/keywords/zipper", "").Code)

	rec = do(router, "PUT", "/categories/Fabric", `{"keywords": ["Silk", "cotton", "silk"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name": "Fabric", "keywords": ["cotton", "silk"]}`, rec.Body.String())

	// names that would not survive a bulk-edit round trip are rejected
	assert.Equal(t, http.StatusBadRequest, do(router, "PUT", "/categories/fabric%20quality", `{"keywords": ["pilling"]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, "PUT", "/categories/Fit:%20petite", `{"keywords": ["short"]}`).Code)
	_, ok := store.Keywords("fabric quality")
	assert.False(t, ok)

	rec = do(router, "GET", "/categories/bulk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fabric:\n- cotton\n- silk")

	assert.Equal(t, http.StatusBadRequest, do(router, "PUT", "/categories/bulk", "- orphan keyword").Code)

	rec = do(router, "PUT", "/categories/bulk", "Fit:\n- snug\n\nColour:\n- faded\n")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Fit", "Colour"}, store.Names())

	rec = do(router, "POST", "/categories/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lexicon.SizingFit, store.Names()[0])
}

func TestLatestReportHandler(t *testing.T) {
	router, s, _ := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, do(router, "GET", "/reports/ohpolly/latest", "").Code)

	data, err := json.Marshal(models.Report{ID: "r1", Brand: "Oh Polly"})
	require.NoError(t, err)
	require.NoError(t, s.Store(context.Background(), "reports/ohpolly/latest.json", data))

	rec := do(router, "GET", "/reports/ohpolly/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "r1", report.ID)
}
