package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func sampleReport() *models.Report {
	return &models.Report{
		ID:          "r-1",
		Brand:       "Oh Polly",
		GeneratedAt: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		Period:      "weekly",
		Metrics: models.BrandMetrics{
			TotalReviews:   3,
			AverageRating:  3,
			PositiveCount:  1,
			NegativeCount:  1,
			NeutralCount:   1,
			SentimentScore: 0.41,
			SentimentLabel: models.SentimentNegative,
			MonthlyTrend:   []float64{0, 0.5},
			Trend: []models.TrendPoint{
				{Period: "2025-05", Neutral: 1, Total: 1},
				{Period: "2025-06", Positive: 1, Negative: 1, Total: 2, PositiveShare: 0.5},
			},
			TopKeywords: []models.KeywordCount{{Keyword: "fit", Count: 1, Sentiment: models.SentimentPositive}},
		},
		Reviews: []models.Review{
			{CustomerName: "Bob", Date: "2025-06-20", Rating: 1, ReviewText: "terrible, runs small <b>awful</b>"},
			{CustomerName: "Ann", Date: "17 June 2025", Rating: 5, ReviewText: "perfect fit", ReviewLink: "https://example.com/r/1"},
		},
	}
}

func TestService_SendReport_Teams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})
	require.NoError(t, service.SendReport(context.Background(), sampleReport()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Equal(t, "Oh Polly Review Report - Weekly", received.Title)
	assert.Equal(t, "d13438", received.ThemeColor)
	require.Len(t, received.Sections, 4)
	assert.Equal(t, "Summary", received.Sections[0].ActivityTitle)
	assert.Contains(t, received.Sections[1].ActivityText, "2025-06")
	assert.Equal(t, "fit", received.Sections[2].Facts[0].Name)
	assert.Contains(t, received.Sections[3].ActivityText, "★☆☆☆☆ **Bob**")
}

func TestService_SendReport_TeamsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})
	err := service.SendReport(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teams")
}

func TestService_SendReport_Email(t *testing.T) {
	var sent *gomail.Message
	service := NewService(&config.Config{
		NotificationEmail: "team@example.com",
		SMTPUsername:      "bot@example.com",
	})
	service.send = func(m *gomail.Message) error {
		sent = m
		return nil
	}

	require.NoError(t, service.SendReport(context.Background(), sampleReport()))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"team@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Oh Polly Review Report - Weekly (3 reviews)"}, sent.GetHeader("Subject"))

	service.send = func(*gomail.Message) error { return errors.New("smtp down") }
	err := service.SendReport(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email")
}

func TestService_NoChannels(t *testing.T) {
	service := NewService(&config.Config{})
	assert.False(t, service.Enabled())
	assert.NoError(t, service.SendReport(context.Background(), sampleReport()))
	assert.NoError(t, service.SendAlert(context.Background(), &models.Alert{Type: "urgent"}))
}

func TestService_SendAlert(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})
	alert := &models.Alert{
		Type:      "urgent",
		Brand:     "Oh Polly",
		Title:     "Negative reviews spiking",
		Message:   "45% of reviews are negative",
		CreatedAt: time.Now(),
	}
	require.NoError(t, service.SendAlert(context.Background(), alert))
	assert.Equal(t, "Negative reviews spiking", received.Title)
	assert.Equal(t, "d13438", received.ThemeColor)
	assert.Equal(t, "Oh Polly", received.Sections[0].Facts[0].Value)
}

func TestBuildEmail(t *testing.T) {
	report := sampleReport()

	html, err := buildEmailHTML(report)
	require.NoError(t, err)
	assert.Contains(t, html, "Oh Polly Review Report")
	assert.Contains(t, html, "Weekly report generated on July 1, 2025")
	assert.Contains(t, html, "50%")
	assert.Contains(t, html, `class="review negative"`)
	assert.Contains(t, html, "&lt;b&gt;awful&lt;/b&gt;")
	assert.NotContains(t, html, "<b>awful</b>")

	text := buildEmailText(report)
	assert.Contains(t, text, "Average Rating: 3.00")
	assert.Contains(t, text, "2025-06: 50% positive of 2")
	assert.Contains(t, text, "fit: 1 (positive)")
	assert.True(t, strings.Contains(text, "URL: https://example.com/r/1"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abc", 2))
	assert.Equal(t, "★★...", truncate("★★★", 2))
}
