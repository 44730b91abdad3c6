package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brandpulse/review-analytics/internal/config"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service handles sending notifications via various channels
type Service struct {
	config *config.Config
	client *resty.Client
	send   func(m *gomail.Message) error
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	s := &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
	s.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		return d.DialAndSend(m)
	}
	return s
}

// Enabled reports whether at least one channel is configured
func (s *Service) Enabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendReport sends a brand digest via configured notification channels
func (s *Service) SendReport(ctx context.Context, report *models.Report) error {
	if !s.Enabled() {
		logrus.Debugf("No notification channel configured, skipping report for %s", report.Brand)
		return nil
	}

	var errors []string

	// Send to Teams if configured
	if s.config.TeamsWebhookURL != "" {
		if err := s.postToTeams(ctx, s.buildTeamsMessage(report)); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Infof("Successfully sent %s report to Teams", report.Brand)
		}
	}

	// Send via email if configured
	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Successfully sent %s report via email", report.Brand)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendAlert posts an urgent alert to Teams. Email is reserved for digests.
func (s *Service) SendAlert(ctx context.Context, alert *models.Alert) error {
	if s.config.TeamsWebhookURL == "" {
		logrus.Warnf("Alert not delivered, no Teams webhook configured: %s - %s", alert.Type, alert.Title)
		return nil
	}

	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: alertColor(alert.Type),
		Title:      alert.Title,
		Text:       alert.Message,
		Sections: []TeamsSection{{
			Facts: []TeamsFact{
				{Name: "Brand", Value: alert.Brand},
				{Name: "Severity", Value: title(alert.Type)},
				{Name: "Raised", Value: alert.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
			},
		}},
	}
	if err := s.postToTeams(ctx, message); err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	logrus.Infof("Sent %s alert for %s", alert.Type, alert.Brand)
	return nil
}

func (s *Service) postToTeams(ctx context.Context, message *TeamsMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(report *models.Report) *TeamsMessage {
	m := report.Metrics
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: sentimentColor(m.SentimentLabel),
		Title:      fmt.Sprintf("%s Review Report - %s", report.Brand, title(report.Period)),
		Text:       fmt.Sprintf("%d reviews, average rating %.2f", m.TotalReviews, m.AverageRating),
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts: []TeamsFact{
			{Name: "Total Reviews", Value: fmt.Sprintf("%d", m.TotalReviews)},
			{Name: "Average Rating", Value: fmt.Sprintf("%.2f", m.AverageRating)},
			{Name: "Rating Sentiment", Value: fmt.Sprintf("%d positive / %d neutral / %d negative",
				m.PositiveCount, m.NeutralCount, m.NegativeCount)},
			{Name: "Text Sentiment", Value: fmt.Sprintf("%.2f (%s)", m.SentimentScore, title(m.SentimentLabel))},
			{Name: "Generated", Value: report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		},
		Markdown: true,
	})

	if len(m.Trend) > 0 {
		var lines []string
		for _, p := range m.Trend {
			lines = append(lines, fmt.Sprintf("**%s**: %.0f%% positive (%d reviews)", p.Period, p.PositiveShare*100, p.Total))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Trend",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	if len(m.TopKeywords) > 0 {
		var facts []TeamsFact
		for _, kw := range m.TopKeywords {
			facts = append(facts, TeamsFact{Name: kw.Keyword, Value: fmt.Sprintf("%d (%s)", kw.Count, kw.Sentiment)})
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Keywords",
			Facts:         facts,
		})
	}

	// Add latest reviews section
	if len(report.Reviews) > 0 {
		var latest []string
		for _, r := range report.Reviews[:min(5, len(report.Reviews))] {
			latest = append(latest, fmt.Sprintf("%s **%s** (%s): %s",
				stars(r.Rating), r.CustomerName, r.Date, truncate(r.ReviewText, 140)))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Latest Reviews",
			ActivityText:  strings.Join(latest, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("%s Review Report - %s (%d reviews)",
		report.Brand, title(report.Period), report.Metrics.TotalReviews)

	htmlBody, err := buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	// Create message
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func sentimentColor(label string) string {
	switch label {
	case models.SentimentPositive:
		return "107c10"
	case models.SentimentNegative:
		return "d13438"
	}
	return "605e5c"
}

func alertColor(kind string) string {
	if kind == "critical" || kind == "urgent" {
		return "d13438"
	}
	return "0078d4"
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func stars(rating int) string {
	if rating < 1 || rating > 5 {
		return "(unrated)"
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length]) + "..."
}
