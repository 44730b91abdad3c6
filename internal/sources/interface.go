package sources

import (
	"context"

	"github.com/brandpulse/review-analytics/internal/models"
)

// Source interface defines the contract for all review sources
type Source interface {
	GetName() string
	FetchReviews(ctx context.Context, brand string) ([]models.Review, error)
	IsEnabled() bool
}
