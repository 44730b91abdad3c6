package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brandpulse/review-analytics/internal/analytics"
	"github.com/brandpulse/review-analytics/internal/categories"
	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/brandpulse/review-analytics/internal/monitoring"
	"github.com/brandpulse/review-analytics/internal/sources"
)

const outputDir = "test_output"

func printReport(report *models.Report) {
	m := report.Metrics

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("📊 REVIEW DIGEST: %s\n", report.Brand)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("📅 Period: %s\n", report.Period)
	fmt.Printf("🕒 Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Printf("📈 Total Reviews: %d (%d undated)\n", m.TotalReviews, m.UndatedReviews)
	fmt.Printf("⭐ Average Rating: %.2f\n", m.AverageRating)

	fmt.Println("\n💭 Ratings:")
	fmt.Printf("   😊 %-10s %d reviews\n", "positive:", m.PositiveCount)
	fmt.Printf("   😐 %-10s %d reviews\n", "neutral:", m.NeutralCount)
	fmt.Printf("   😞 %-10s %d reviews\n", "negative:", m.NegativeCount)
	fmt.Printf("\n🧠 Text sentiment: %s (score %.2f)\n", m.SentimentLabel, m.SentimentScore)

	if len(m.Trend) > 0 {
		fmt.Println("\n📉 Trend (positive share):")
		for _, p := range m.Trend {
			fmt.Printf("   %-8s %5.1f%%  (%d reviews)\n", p.Period, p.PositiveShare*100, p.Total)
		}
	}

	if len(m.TopKeywords) > 0 {
		fmt.Println("\n🔑 Top Keywords:")
		for _, kw := range m.TopKeywords {
			fmt.Printf("   • %-20s %3d  (%s)\n", kw.Keyword, kw.Count, kw.Sentiment)
		}
	}

	fmt.Println("\n📝 Recent Reviews:")
	for i, r := range report.Reviews {
		if i >= 5 { // Show first 5 reviews
			fmt.Printf("   ... and %d more reviews\n", len(report.Reviews)-5)
			break
		}
		fmt.Printf("\n   %d. %s (%d★, %s)\n", i+1, r.CustomerName, r.Rating, r.Date)
		fmt.Printf("      %s\n", r.ReviewText)
		if r.ReviewLink != "" {
			fmt.Printf("      🔗 %s\n", r.ReviewLink)
		}
	}
	fmt.Println("\n" + strings.Repeat("=", 70))
}

func saveReportToFile(report *models.Report) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	timestamp := report.GeneratedAt.Format("2006-01-02_15-04-05")
	filename := filepath.Join(outputDir, fmt.Sprintf("%s_report_%s.json", sources.CanonicalBrandID(report.Brand), timestamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return filename, os.WriteFile(filename, data, 0644)
}

func main() {
	brand := flag.String("brand", "", "brand name shown in the report")
	schedule := flag.String("period", "weekly", "report period: daily or weekly")
	mode := flag.String("match", "word", "keyword match mode: word or lemma")
	flag.Parse()

	fmt.Println("🤖 Review Analytics - Test Report Generator")
	fmt.Println("===========================================")

	if flag.NArg() != 1 {
		fmt.Println("Usage: test-report [-brand name] [-period daily|weekly] [-match word|lemma] <reviews.json>")
		os.Exit(2)
	}
	path := flag.Arg(0)
	if *brand == "" {
		*brand = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	reviews, err := sources.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	cfg := &config.Config{
		ReportSchedule:   *schedule,
		MatchMode:        *mode,
		TrendWindow:      analytics.DefaultTrendWindow,
		TrendGranularity: "month",
	}

	// GenerateReport never touches storage or notifications
	service := monitoring.NewService(cfg, nil, nil, categories.NewStore(nil))

	fmt.Printf("\n📊 Generating report with %d reviews from %s...\n", len(reviews), path)

	report, err := service.GenerateReport(*brand, reviews)
	if err != nil {
		fmt.Printf("❌ Error generating report: %v\n", err)
		os.Exit(1)
	}
	printReport(report)

	filename, err := saveReportToFile(report)
	if err != nil {
		fmt.Printf("\n⚠️  Warning: Could not save to file: %v\n", err)
	} else {
		fmt.Printf("\n💾 Report saved to: %s\n", filename)
	}

	fmt.Println("\n✅ Test report generation completed!")
}
