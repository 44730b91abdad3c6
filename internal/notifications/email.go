package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/brandpulse/review-analytics/internal/models"
)

const emailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Brand}} Review Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #0078d4; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .review { border-left: 4px solid #0078d4; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .review-meta { color: #666; font-size: 0.9em; }
        .positive { border-left-color: #107c10; }
        .negative { border-left-color: #d13438; }
        .neutral { border-left-color: #605e5c; }
        td, th { padding: 4px 12px; text-align: left; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Brand}} Review Report</h1>
        <p>{{.Period | title}} report generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Total Reviews:</strong> {{.Metrics.TotalReviews}}</p>
        <p><strong>Average Rating:</strong> {{printf "%.2f" .Metrics.AverageRating}}</p>
        <p><strong>Rating Sentiment:</strong> {{.Metrics.PositiveCount}} positive, {{.Metrics.NeutralCount}} neutral, {{.Metrics.NegativeCount}} negative</p>
        <p><strong>Text Sentiment:</strong> {{printf "%.2f" .Metrics.SentimentScore}} ({{.Metrics.SentimentLabel}})</p>
        {{if .Metrics.UndatedReviews}}<p><strong>Undated Reviews:</strong> {{.Metrics.UndatedReviews}}</p>{{end}}
    </div>

    {{if .Metrics.Trend}}
    <h2>Trend</h2>
    <table>
        <tr><th>Period</th><th>Reviews</th><th>Positive</th><th>Neutral</th><th>Negative</th><th>Positive share</th></tr>
        {{range .Metrics.Trend}}
        <tr><td>{{.Period}}</td><td>{{.Total}}</td><td>{{.Positive}}</td><td>{{.Neutral}}</td><td>{{.Negative}}</td><td>{{percent .PositiveShare}}</td></tr>
        {{end}}
    </table>
    {{end}}

    {{if .Metrics.TopKeywords}}
    <h2>Top Keywords</h2>
    <ul>
    {{range .Metrics.TopKeywords}}<li class="{{.Sentiment}}">{{.Keyword}} ({{.Count}})</li>{{end}}
    </ul>
    {{end}}

    {{if .Reviews}}
    <h2>Latest Reviews</h2>
    {{range $index, $review := .Reviews}}
        {{if lt $index 10}}
        <div class="review {{$review.RatingSentiment}}">
            <div class="review-meta">
                {{$review.CustomerName}} | {{$review.Date}} | {{$review.Rating}}/5
                {{if $review.ReviewLink}} | <a href="{{$review.ReviewLink}}" target="_blank">view</a>{{end}}
            </div>
            <p>{{$review.ReviewText | truncate 200}}</p>
        </div>
        {{end}}
    {{end}}
    {{end}}

    <hr>
    <p><small>This report was generated automatically by Review Analytics.</small></p>
</body>
</html>
`

var emailHTML = template.Must(template.New("email").Funcs(template.FuncMap{
	"title": title,
	"truncate": func(length int, s string) string {
		return truncate(s, length)
	},
	"percent": func(share float64) string {
		return fmt.Sprintf("%.0f%%", share*100)
	},
}).Parse(emailTemplate))

func buildEmailHTML(report *models.Report) (string, error) {
	var buf bytes.Buffer
	if err := emailHTML.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildEmailText(report *models.Report) string {
	var text strings.Builder
	m := report.Metrics

	text.WriteString(fmt.Sprintf("%s Review Report - %s\n", report.Brand, title(report.Period)))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Reviews: %d\n", m.TotalReviews))
	text.WriteString(fmt.Sprintf("Average Rating: %.2f\n", m.AverageRating))
	text.WriteString(fmt.Sprintf("Rating Sentiment: %d positive, %d neutral, %d negative\n",
		m.PositiveCount, m.NeutralCount, m.NegativeCount))
	text.WriteString(fmt.Sprintf("Text Sentiment: %.2f (%s)\n", m.SentimentScore, m.SentimentLabel))

	if len(m.Trend) > 0 {
		text.WriteString("\nTREND\n")
		text.WriteString("=====\n")
		for _, p := range m.Trend {
			text.WriteString(fmt.Sprintf("%s: %.0f%% positive of %d\n", p.Period, p.PositiveShare*100, p.Total))
		}
	}

	if len(m.TopKeywords) > 0 {
		text.WriteString("\nTOP KEYWORDS\n")
		text.WriteString("============\n")
		for _, kw := range m.TopKeywords {
			text.WriteString(fmt.Sprintf("%s: %d (%s)\n", kw.Keyword, kw.Count, kw.Sentiment))
		}
	}

	if len(report.Reviews) > 0 {
		text.WriteString("\nLATEST REVIEWS\n")
		text.WriteString("==============\n")

		for i, r := range report.Reviews[:min(10, len(report.Reviews))] {
			text.WriteString(fmt.Sprintf("\n%d. %s (%d/5) - %s\n", i+1, r.CustomerName, r.Rating, r.Date))
			if r.ReviewLink != "" {
				text.WriteString(fmt.Sprintf("   URL: %s\n", r.ReviewLink))
			}
			if r.ReviewText != "" {
				text.WriteString(fmt.Sprintf("   %s\n", truncate(r.ReviewText, 200)))
			}
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by Review Analytics.\n")

	return text.String()
}
