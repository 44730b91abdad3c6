package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/sources"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("🔍 Review Analytics - API Connectivity Test")
	fmt.Println("===========================================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("\n🔑 Testing keyword backend...")
	fmt.Println(strings.Repeat("-", 40))
	testKeywords(ctx, cfg)

	fmt.Println("\n📡 Testing review sources...")
	fmt.Println(strings.Repeat("-", 40))
	for _, brand := range cfg.Brands {
		testSource(ctx, sources.NewAPISource(cfg.BackendURL), brand)
		testSource(ctx, sources.NewFileSource(cfg.ReviewsDir), brand)
	}
	if len(cfg.Brands) == 0 {
		fmt.Println("⚠️  No BRANDS configured")
	}

	fmt.Println("\n✅ API connectivity test completed!")
}

func testKeywords(ctx context.Context, cfg *config.Config) {
	if cfg.KeywordBackend != "api" {
		fmt.Printf("🔸 Keyword backend is %q, nothing to check\n", cfg.KeywordBackend)
		return
	}

	fmt.Printf("🔸 Testing %s/keywords... ", cfg.BackendURL)
	loaded, err := categories.NewAPIBackend(cfg.BackendURL).Load(ctx)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	total := 0
	for _, kws := range loaded {
		total += len(kws)
	}
	fmt.Printf("✅ SUCCESS (%d categories, %d keywords)\n", len(loaded), total)
}

func testSource(ctx context.Context, source sources.Source, brand string) {
	fmt.Printf("🔸 Testing %s for %s... ", source.GetName(), brand)

	if !source.IsEnabled() {
		fmt.Printf("⚠️  DISABLED (not configured)\n")
		return
	}

	reviews, err := source.FetchReviews(ctx, brand)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	fmt.Printf("✅ SUCCESS (%d reviews found)\n", len(reviews))

	// Show sample review
	if len(reviews) > 0 {
		fmt.Printf("   📝 Sample: \"%s\"\n", truncate(reviews[0].ReviewText, 80))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
