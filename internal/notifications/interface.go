package notifications

import (
	"context"

	"github.com/brandpulse/review-analytics/internal/models"
)

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendReport(ctx context.Context, report *models.Report) error
	SendAlert(ctx context.Context, alert *models.Alert) error
}
