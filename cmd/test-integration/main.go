package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/brandpulse/review-analytics/internal/monitoring"
	"github.com/brandpulse/review-analytics/internal/storage"
	"github.com/joho/godotenv"
)

// consoleNotification prints reports and alerts instead of sending them
type consoleNotification struct{}

func (c *consoleNotification) SendReport(ctx context.Context, report *models.Report) error {
	m := report.Metrics
	fmt.Printf("\n🎉 REPORT GENERATED for %s!\n", report.Brand)
	fmt.Printf("📊 Total Reviews: %d | ⭐ %.2f | 😊 %d 😐 %d 😞 %d\n",
		m.TotalReviews, m.AverageRating, m.PositiveCount, m.NeutralCount, m.NegativeCount)
	fmt.Printf("🧠 Text sentiment: %s (%.2f)\n", m.SentimentLabel, m.SentimentScore)

	if len(report.Reviews) > 0 {
		fmt.Println("📝 Sample Reviews:")
		for i, r := range report.Reviews {
			if i >= 3 {
				break
			}
			fmt.Printf("   %d. [%d★] %s\n", i+1, r.Rating, r.ReviewText)
		}
	}
	return nil
}

func (c *consoleNotification) SendAlert(ctx context.Context, alert *models.Alert) error {
	fmt.Printf("🚨 ALERT: %s\n   %s\n", alert.Title, alert.Message)
	return nil
}

func main() {
	fmt.Println("🧪 Review Analytics - Local Integration Test")
	fmt.Println("============================================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	reviewsDir := os.Getenv("REVIEWS_DIR")
	if reviewsDir == "" {
		reviewsDir = "."
	}
	brands := brandsIn(reviewsDir)
	if env := os.Getenv("BRANDS"); env != "" {
		brands = strings.Split(env, ",")
	}
	if len(brands) == 0 {
		log.Fatalf("No BRANDS configured and no review files found in %s", reviewsDir)
	}

	// Create basic config for testing
	cfg := &config.Config{
		ReportSchedule:         "weekly",
		Brands:                 brands,
		BackendURL:             os.Getenv("BACKEND_URL"),
		ReviewsDir:             reviewsDir,
		MatchMode:              "word",
		TrendWindow:            6,
		TrendGranularity:       "month",
		NegativeAlertThreshold: 0.4,
	}

	// Reports go to a throwaway database
	s, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer s.Close()

	service := monitoring.NewService(cfg, s, &consoleNotification{}, categories.NewStore(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("🔍 Running full digest cycle for %s...\n", strings.Join(brands, ", "))
	if err := service.RunMonitoring(ctx); err != nil {
		fmt.Printf("❌ Digest run reported errors: %v\n", err)
	}

	fmt.Println("\n🔍 Running negative review check...")
	if err := service.RunUrgentCheck(ctx); err != nil {
		fmt.Printf("❌ Negative review check reported errors: %v\n", err)
	}

	fmt.Println("\n📈 Metrics:")
	fmt.Println(service.GetMetrics())

	fmt.Println("\n✅ Local integration test completed!")
}

// brandsIn lists the brand files in a scraper output directory
func brandsIn(dir string) []string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	var brands []string
	for _, m := range matches {
		brands = append(brands, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	return brands
}
