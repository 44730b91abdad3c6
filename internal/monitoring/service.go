package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brandpulse/review-analytics/internal/analytics"
	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/keywords"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/brandpulse/review-analytics/internal/notifications"
	"github.com/brandpulse/review-analytics/internal/sources"
	"github.com/brandpulse/review-analytics/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// maxReportReviews caps the review list stored with each digest
	maxReportReviews = 50
	// reportsToKeep is the number of digests retained per brand
	reportsToKeep = 30
	// minAlertReviews avoids alerting on a handful of reviews
	minAlertReviews = 5
	// brandConcurrency bounds parallel brand runs
	brandConcurrency = 4
)

// Service runs the scheduled review digests and serves ad-hoc analysis
type Service struct {
	config              *config.Config
	storage             storage.StorageInterface
	notificationService notifications.NotificationInterface
	categories          *categories.Store
	matcher             *keywords.Matcher
	sources             []sources.Source
	metrics             *Metrics
	mu                  sync.RWMutex
	now                 func() time.Time
}

// Metrics holds monitoring metrics
type Metrics struct {
	TotalReviews       int            `json:"total_reviews"`
	LastRun            time.Time      `json:"last_run"`
	LastRunDuration    string         `json:"last_run_duration"`
	BrandReviews       map[string]int `json:"brand_reviews"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	AlertsSent         int            `json:"alerts_sent"`
	ErrorCount         int            `json:"error_count"`
}

// NewService creates a new monitoring service
func NewService(cfg *config.Config, storage storage.StorageInterface, notificationService notifications.NotificationInterface, store *categories.Store) *Service {
	mode, err := keywords.ParseMode(cfg.MatchMode)
	if err != nil {
		logrus.Warnf("Invalid match mode, falling back to %s: %v", mode, err)
	}

	service := &Service{
		config:              cfg,
		storage:             storage,
		notificationService: notificationService,
		categories:          store,
		matcher:             keywords.NewMatcher(mode),
		metrics: &Metrics{
			BrandReviews:       make(map[string]int),
			SentimentBreakdown: make(map[string]int),
		},
		now: time.Now,
	}

	// Initialize review sources
	service.initializeSources()

	return service
}

func (s *Service) initializeSources() {
	s.sources = []sources.Source{
		sources.NewAPISource(s.config.BackendURL),
		sources.NewFileSource(s.config.ReviewsDir),
	}
}

// Categories exposes the category store used for matching
func (s *Service) Categories() *categories.Store {
	return s.categories
}

// Analyze aggregates reviews with the live category configuration.
// Unset options fall back to the configured matcher and trend settings.
func (s *Service) Analyze(reviews []models.Review, opts analytics.Options, filters analytics.Filters) (analytics.Result, error) {
	if opts.CategoryKeywords == nil {
		opts.CategoryKeywords = s.categories.Map()
	}
	if opts.Matcher == nil {
		opts.Matcher = s.matcher
	}
	if opts.TrendWindow <= 0 {
		opts.TrendWindow = s.config.TrendWindow
	}
	if opts.Granularity == "" {
		opts.Granularity = s.config.TrendGranularity
	}
	if filters.Now.IsZero() {
		filters.Now = s.now()
	}
	return analytics.Aggregate(reviews, opts, filters)
}

// AnalyzeBrand fetches a brand's reviews from every enabled source and aggregates them
func (s *Service) AnalyzeBrand(ctx context.Context, brand string, opts analytics.Options, filters analytics.Filters) (analytics.Result, error) {
	reviews, err := s.fetchBrandReviews(ctx, brand)
	if err != nil && len(reviews) == 0 {
		return analytics.Result{}, err
	}
	return s.Analyze(reviews, opts, filters)
}

// RunMonitoring builds, stores and sends the digest for every configured brand
func (s *Service) RunMonitoring(ctx context.Context) error {
	start := time.Now()
	logrus.Infof("Starting digest run for %d brands", len(s.config.Brands))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	var (
		mu       sync.Mutex
		reports  []*models.Report
		failures []error
	)

	var g errgroup.Group
	g.SetLimit(brandConcurrency)
	for _, brand := range s.config.Brands {
		brand := brand
		g.Go(func() error {
			report, err := s.runBrand(ctx, brand)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logrus.Errorf("Digest for %s failed: %v", brand, err)
				failures = append(failures, fmt.Errorf("%s: %w", brand, err))
				return nil
			}
			reports = append(reports, report)
			return nil
		})
	}
	_ = g.Wait() // brand failures are collected, never returned early

	s.updateMetrics(reports, time.Since(start), len(failures))

	logrus.Infof("Digest run completed in %v (%d reports, %d failures)", time.Since(start), len(reports), len(failures))
	if len(failures) > 0 {
		return fmt.Errorf("digest run failed for %d brands: %w", len(failures), errors.Join(failures...))
	}
	return nil
}

func (s *Service) runBrand(ctx context.Context, brand string) (*models.Report, error) {
	reviews, err := s.fetchBrandReviews(ctx, brand)
	if err != nil && len(reviews) == 0 {
		return nil, err
	}

	report, err := s.GenerateReport(brand, reviews)
	if err != nil {
		return nil, err
	}

	if err := s.storeReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	if err := s.notificationService.SendReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to send report: %w", err)
	}

	return report, nil
}

// fetchBrandReviews queries all enabled sources concurrently and merges the results.
// It returns whatever was fetched together with the first source error.
func (s *Service) fetchBrandReviews(ctx context.Context, brand string) ([]models.Review, error) {
	var wg sync.WaitGroup
	reviewsChan := make(chan []models.Review, len(s.sources))
	errorsChan := make(chan error, len(s.sources))

	for _, source := range s.sources {
		if !source.IsEnabled() {
			continue
		}
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			reviews, err := src.FetchReviews(ctx, brand)
			if err != nil {
				logrus.Errorf("Error fetching %s reviews from %s: %v", brand, src.GetName(), err)
				errorsChan <- fmt.Errorf("%s: %w", src.GetName(), err)
				return
			}

			logrus.Infof("Found %d %s reviews from %s", len(reviews), brand, src.GetName())
			reviewsChan <- reviews
		}(source)
	}

	// Close channels when all goroutines complete
	go func() {
		wg.Wait()
		close(reviewsChan)
		close(errorsChan)
	}()

	var all []models.Review
	for reviews := range reviewsChan {
		all = append(all, reviews...)
	}

	var firstErr error
	for err := range errorsChan {
		if firstErr == nil {
			firstErr = err
		}
	}

	return sources.Dedupe(all), firstErr
}

// GenerateReport builds a digest: all-time metrics plus the reviews posted in the report period
func (s *Service) GenerateReport(brand string, reviews []models.Review) (*models.Report, error) {
	result, err := s.Analyze(reviews, analytics.Options{}, analytics.Filters{})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s reviews: %w", brand, err)
	}

	recent, err := analytics.Filter(result.Reviews, analytics.Filters{Range: s.periodRange(), Now: s.now()})
	if err != nil {
		return nil, err
	}
	if len(recent) > maxReportReviews {
		recent = recent[:maxReportReviews]
	}

	return &models.Report{
		ID:          uuid.NewString(),
		Brand:       brand,
		GeneratedAt: s.now().UTC(),
		Period:      s.config.ReportSchedule,
		Metrics:     result.Metrics,
		Reviews:     recent,
	}, nil
}

func (s *Service) periodRange() analytics.DateRange {
	if s.config.ReportSchedule == "daily" {
		return analytics.DateRange{
			Preset: analytics.RangeCustom,
			From:   s.now().AddDate(0, 0, -1).Format("2006-01-02"),
		}
	}
	return analytics.DateRange{Preset: analytics.RangeWeek}
}

func reportPrefix(brand string) string {
	return fmt.Sprintf("reports/%s/", sources.CanonicalBrandID(brand))
}

func (s *Service) storeReport(ctx context.Context, report *models.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	prefix := reportPrefix(report.Brand)
	name := fmt.Sprintf("%sreport-%s.json", prefix, report.GeneratedAt.Format("2006-01-02-15-04-05"))
	if err := s.storage.Store(ctx, name, data); err != nil {
		return err
	}
	if err := s.storage.Store(ctx, prefix+"latest.json", data); err != nil {
		return err
	}

	s.pruneReports(ctx, prefix)
	return nil
}

// pruneReports keeps the newest reportsToKeep snapshots; failures are only logged
func (s *Service) pruneReports(ctx context.Context, prefix string) {
	names, err := s.storage.List(ctx, prefix+"report-")
	if err != nil {
		logrus.Warnf("Failed to list reports under %s: %v", prefix, err)
		return
	}
	if len(names) <= reportsToKeep {
		return
	}

	// timestamped names sort chronologically
	sort.Strings(names)
	for _, name := range names[:len(names)-reportsToKeep] {
		if err := s.storage.Delete(ctx, name); err != nil {
			logrus.Warnf("Failed to delete old report %s: %v", name, err)
		}
	}
}

// LatestReport returns the most recent stored digest for a brand
func (s *Service) LatestReport(ctx context.Context, brand string) (*models.Report, error) {
	data, err := s.storage.Retrieve(ctx, reportPrefix(brand)+"latest.json")
	if err != nil {
		return nil, err
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse stored report: %w", err)
	}
	return &report, nil
}

// RunUrgentCheck alerts when the share of negative ratings in the last
// seven days reaches the configured threshold
func (s *Service) RunUrgentCheck(ctx context.Context) error {
	start := time.Now()
	logrus.Info("Starting negative review check")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	var errs []error
	for _, brand := range s.config.Brands {
		reviews, err := s.fetchBrandReviews(ctx, brand)
		if err != nil && len(reviews) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", brand, err))
			continue
		}

		alert, err := s.checkNegativeShare(brand, reviews)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", brand, err))
			continue
		}
		if alert == nil {
			continue
		}

		if err := s.notificationService.SendAlert(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("%s: failed to send alert: %w", brand, err))
			continue
		}
		s.mu.Lock()
		s.metrics.AlertsSent++
		s.mu.Unlock()
	}

	logrus.Infof("Negative review check completed in %v", time.Since(start))
	return errors.Join(errs...)
}

func (s *Service) checkNegativeShare(brand string, reviews []models.Review) (*models.Alert, error) {
	result, err := s.Analyze(reviews, analytics.Options{}, analytics.Filters{
		Range: analytics.DateRange{Preset: analytics.RangeWeek},
	})
	if err != nil {
		return nil, err
	}

	m := result.Metrics
	rated := m.PositiveCount + m.NegativeCount + m.NeutralCount
	if rated < minAlertReviews {
		return nil, nil
	}

	share := float64(m.NegativeCount) / float64(rated)
	if share < s.config.NegativeAlertThreshold {
		return nil, nil
	}

	logrus.Infof("Negative share for %s is %.0f%% over %d reviews", brand, share*100, rated)

	var issues []string
	for _, kw := range m.TopKeywords {
		if kw.Sentiment == models.SentimentNegative {
			issues = append(issues, fmt.Sprintf("%s (%d)", kw.Keyword, kw.Count))
		}
	}
	message := fmt.Sprintf("%d of %d reviews in the last 7 days are negative (%.0f%%).", m.NegativeCount, rated, share*100)
	if len(issues) > 0 {
		message += " Top issues: " + strings.Join(issues, ", ") + "."
	}

	return &models.Alert{
		ID:        uuid.NewString(),
		Type:      "urgent",
		Brand:     brand,
		Title:     fmt.Sprintf("%s: negative reviews at %.0f%%", brand, share*100),
		Message:   message,
		CreatedAt: s.now().UTC(),
	}, nil
}

func (s *Service) updateMetrics(reports []*models.Report, duration time.Duration, errorCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.ErrorCount = errorCount

	// Reset counters
	s.metrics.TotalReviews = 0
	s.metrics.BrandReviews = make(map[string]int)
	s.metrics.SentimentBreakdown = make(map[string]int)

	for _, r := range reports {
		m := r.Metrics
		s.metrics.TotalReviews += m.TotalReviews
		s.metrics.BrandReviews[r.Brand] = m.TotalReviews
		s.metrics.SentimentBreakdown[models.SentimentPositive] += m.PositiveCount
		s.metrics.SentimentBreakdown[models.SentimentNegative] += m.NegativeCount
		s.metrics.SentimentBreakdown[models.SentimentNeutral] += m.NeutralCount
	}
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
