package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brandpulse/review-analytics/internal/analytics"
	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/lexicon"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/brandpulse/review-analytics/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a mock implementation of the storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockStorage) Retrieve(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockNotificationService is a mock implementation of the notification service
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SendReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockNotificationService) SendAlert(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// stubSource returns canned reviews
type stubSource struct {
	name    string
	reviews []models.Review
	err     error
}

func (s *stubSource) GetName() string { return s.name }
func (s *stubSource) IsEnabled() bool { return true }
func (s *stubSource) FetchReviews(ctx context.Context, brand string) ([]models.Review, error) {
	return s.reviews, s.err
}

var testNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		ReportSchedule:         "weekly",
		Brands:                 []string{"Oh Polly"},
		MatchMode:              "word",
		TrendWindow:            6,
		TrendGranularity:       "month",
		NegativeAlertThreshold: 0.4,
	}
}

func newTestService(cfg *config.Config, store storage.StorageInterface, n *MockNotificationService, src ...*stubSource) *Service {
	service := NewService(cfg, store, n, categories.NewStore(nil))
	service.now = func() time.Time { return testNow }
	service.sources = nil
	for _, s := range src {
		service.sources = append(service.sources, s)
	}
	return service
}

func daysAgo(n int) string {
	return testNow.AddDate(0, 0, -n).Format("2006-01-02")
}

func sampleReviews() []models.Review {
	return []models.Review{
		{CustomerName: "Ann", Date: daysAgo(1), Rating: 5, ReviewText: "perfect fit, true to size", ReviewLink: "l1"},
		{CustomerName: "Bob", Date: daysAgo(3), Rating: 1, ReviewText: "terrible, runs small, awful quality", ReviewLink: "l2"},
		{CustomerName: "Cat", Date: daysAgo(40), Rating: 3, ReviewText: "okay, nothing special", ReviewLink: "l3"},
	}
}

func TestService_Analyze_UsesLiveCategories(t *testing.T) {
	service := newTestService(testConfig(), &MockStorage{}, &MockNotificationService{})
	_, err := service.Categories().AddKeyword(lexicon.Custom, "zipper")
	require.NoError(t, err)

	reviews := []models.Review{
		{Rating: 2, ReviewText: "the zipper broke", Date: daysAgo(2)},
		{Rating: 5, ReviewText: "lovely dress", Date: daysAgo(2)},
	}
	result, err := service.Analyze(reviews, analytics.Options{Categories: []string{lexicon.Custom}}, analytics.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Metrics.TotalReviews)
	assert.Equal(t, "the zipper broke", result.Reviews[0].ReviewText)
}

func TestService_GenerateReport(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		recent   []string
	}{
		{"Weekly digest", "weekly", []string{"Ann", "Bob"}},
		{"Daily digest", "daily", []string{"Ann"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ReportSchedule = tt.schedule
			service := newTestService(cfg, &MockStorage{}, &MockNotificationService{})

			report, err := service.GenerateReport("Oh Polly", sampleReviews())
			require.NoError(t, err)

			assert.NotEmpty(t, report.ID)
			assert.Equal(t, "Oh Polly", report.Brand)
			assert.Equal(t, tt.schedule, report.Period)
			assert.Equal(t, testNow, report.GeneratedAt)
			assert.Equal(t, 3, report.Metrics.TotalReviews)
			assert.Equal(t, 3.0, report.Metrics.AverageRating)

			var names []string
			for _, r := range report.Reviews {
				names = append(names, r.CustomerName)
			}
			assert.Equal(t, tt.recent, names)
		})
	}
}

func TestService_RunMonitoring(t *testing.T) {
	mockStorage := &MockStorage{}
	mockNotifications := &MockNotificationService{}

	mockStorage.On("Store", mock.Anything, "reports/ohpolly/report-2025-07-01-12-00-00.json", mock.Anything).Return(nil).Once()
	mockStorage.On("Store", mock.Anything, "reports/ohpolly/latest.json", mock.Anything).Return(nil).Once()
	mockStorage.On("List", mock.Anything, "reports/ohpolly/report-").Return([]string{"reports/ohpolly/report-2025-07-01-12-00-00.json"}, nil)
	mockNotifications.On("SendReport", mock.Anything, mock.MatchedBy(func(r *models.Report) bool {
		return r.Brand == "Oh Polly" && r.Metrics.TotalReviews == 3
	})).Return(nil).Once()

	reviews := sampleReviews()
	service := newTestService(testConfig(), mockStorage, mockNotifications,
		&stubSource{name: "api", reviews: reviews},
		&stubSource{name: "file", reviews: reviews[:1]}, // duplicate of the API copy
	)

	require.NoError(t, service.RunMonitoring(context.Background()))
	mockStorage.AssertExpectations(t)
	mockNotifications.AssertExpectations(t)

	var metrics Metrics
	require.NoError(t, json.Unmarshal([]byte(service.GetMetrics()), &metrics))
	assert.Equal(t, 3, metrics.TotalReviews)
	assert.Equal(t, 3, metrics.BrandReviews["Oh Polly"])
	assert.Equal(t, 1, metrics.SentimentBreakdown[models.SentimentNegative])
	assert.Equal(t, 0, metrics.ErrorCount)
}

func TestService_RunMonitoring_SourceFailure(t *testing.T) {
	mockStorage := &MockStorage{}
	mockNotifications := &MockNotificationService{}

	service := newTestService(testConfig(), mockStorage, mockNotifications,
		&stubSource{name: "api", err: errors.New("connection refused")},
	)

	err := service.RunMonitoring(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	mockNotifications.AssertNotCalled(t, "SendReport", mock.Anything, mock.Anything)

	var metrics Metrics
	require.NoError(t, json.Unmarshal([]byte(service.GetMetrics()), &metrics))
	assert.Equal(t, 1, metrics.ErrorCount)
}

func TestService_RunMonitoring_PartialSourceFailure(t *testing.T) {
	mockStorage := &MockStorage{}
	mockNotifications := &MockNotificationService{}
	mockStorage.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStorage.On("List", mock.Anything, mock.Anything).Return([]string{}, nil)
	mockNotifications.On("SendReport", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(testConfig(), mockStorage, mockNotifications,
		&stubSource{name: "api", err: errors.New("timeout")},
		&stubSource{name: "file", reviews: sampleReviews()},
	)

	assert.NoError(t, service.RunMonitoring(context.Background()))
	mockNotifications.AssertNumberOfCalls(t, "SendReport", 1)
}

func TestService_pruneReports(t *testing.T) {
	mockStorage := &MockStorage{}
	var names []string
	for i := 0; i < reportsToKeep+2; i++ {
		names = append(names, fmt.Sprintf("reports/ohpolly/report-2025-06-%02d-00-00-00.json", i+1))
	}
	// storage may list in any order
	names[0], names[len(names)-1] = names[len(names)-1], names[0]

	mockStorage.On("List", mock.Anything, "reports/ohpolly/report-").Return(names, nil)
	mockStorage.On("Delete", mock.Anything, "reports/ohpolly/report-2025-06-01-00-00-00.json").Return(nil).Once()
	mockStorage.On("Delete", mock.Anything, "reports/ohpolly/report-2025-06-02-00-00-00.json").Return(errors.New("locked")).Once()

	service := newTestService(testConfig(), mockStorage, &MockNotificationService{})
	service.pruneReports(context.Background(), "reports/ohpolly/")

	mockStorage.AssertExpectations(t)
	mockStorage.AssertNumberOfCalls(t, "Delete", 2)
}

func TestService_LatestReport(t *testing.T) {
	mockStorage := &MockStorage{}
	data, err := json.Marshal(models.Report{ID: "abc", Brand: "Oh Polly"})
	require.NoError(t, err)
	mockStorage.On("Retrieve", mock.Anything, "reports/ohpolly/latest.json").Return(data, nil)
	mockStorage.On("Retrieve", mock.Anything, "reports/unknown/latest.json").Return(nil, storage.ErrNotFound)

	service := newTestService(testConfig(), mockStorage, &MockNotificationService{})

	report, err := service.LatestReport(context.Background(), "Oh Polly")
	require.NoError(t, err)
	assert.Equal(t, "abc", report.ID)

	_, err = service.LatestReport(context.Background(), "Unknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_RunUrgentCheck(t *testing.T) {
	negativeWeek := []models.Review{
		{Date: daysAgo(1), Rating: 1, ReviewText: "late delivery, rude staff", ReviewLink: "a"},
		{Date: daysAgo(1), Rating: 1, ReviewText: "refund never arrived", ReviewLink: "b"},
		{Date: daysAgo(2), Rating: 2, ReviewText: "late delivery", ReviewLink: "c"},
		{Date: daysAgo(2), Rating: 5, ReviewText: "great fit", ReviewLink: "d"},
		{Date: daysAgo(3), Rating: 4, ReviewText: "nice", ReviewLink: "e"},
		{Date: daysAgo(30), Rating: 1, ReviewText: "old complaint", ReviewLink: "f"},
	}

	t.Run("Alerts on negative spike", func(t *testing.T) {
		mockNotifications := &MockNotificationService{}
		mockNotifications.On("SendAlert", mock.Anything, mock.MatchedBy(func(a *models.Alert) bool {
			return a.Type == "urgent" && a.Brand == "Oh Polly" && a.ID != ""
		})).Return(nil).Once()

		service := newTestService(testConfig(), &MockStorage{}, mockNotifications, &stubSource{name: "api", reviews: negativeWeek})
		require.NoError(t, service.RunUrgentCheck(context.Background()))
		mockNotifications.AssertExpectations(t)

		var metrics Metrics
		require.NoError(t, json.Unmarshal([]byte(service.GetMetrics()), &metrics))
		assert.Equal(t, 1, metrics.AlertsSent)
	})

	t.Run("Too few reviews", func(t *testing.T) {
		mockNotifications := &MockNotificationService{}
		service := newTestService(testConfig(), &MockStorage{}, mockNotifications, &stubSource{name: "api", reviews: negativeWeek[:3]})
		require.NoError(t, service.RunUrgentCheck(context.Background()))
		mockNotifications.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything)
	})

	t.Run("Below threshold", func(t *testing.T) {
		cfg := testConfig()
		cfg.NegativeAlertThreshold = 0.9
		mockNotifications := &MockNotificationService{}
		service := newTestService(cfg, &MockStorage{}, mockNotifications, &stubSource{name: "api", reviews: negativeWeek})
		require.NoError(t, service.RunUrgentCheck(context.Background()))
		mockNotifications.AssertNotCalled(t, "SendAlert", mock.Anything, mock.Anything)
	})

	t.Run("Alert message names negative keywords", func(t *testing.T) {
		service := newTestService(testConfig(), &MockStorage{}, &MockNotificationService{})
		alert, err := service.checkNegativeShare("Oh Polly", negativeWeek)
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Contains(t, alert.Message, "3 of 5 reviews")
		assert.Contains(t, alert.Title, "60%")
	})
}

func TestService_Inspect(t *testing.T) {
	service := newTestService(testConfig(), &MockStorage{}, &MockNotificationService{})
	text := "Terrible quality, runs small"

	all := service.Inspect(text, nil)
	assert.Equal(t, models.SentimentNegative, all.Sentiment.Classification)
	assert.Contains(t, all.Categories, lexicon.SizingFit)
	assert.NotEmpty(t, all.Highlights)

	none := service.Inspect(text, []string{lexicon.Custom})
	assert.Empty(t, none.Highlights)
	assert.Equal(t, all.Categories, none.Categories)
}
