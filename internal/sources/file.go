package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/sirupsen/logrus"
)

// FileSource reads the scraper's JSON output from a directory.
// A brand's reviews live in <dir>/<canonical brand id>.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a new file source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (f *FileSource) GetName() string {
	return "file"
}

func (f *FileSource) IsEnabled() bool {
	return f.dir != ""
}

// Path returns the file holding a brand's reviews
func (f *FileSource) Path(brand string) string {
	return filepath.Join(f.dir, CanonicalBrandID(brand)+".json")
}

func (f *FileSource) FetchReviews(ctx context.Context, brand string) ([]models.Review, error) {
	if !f.IsEnabled() {
		logrus.Debug("File source disabled - no reviews directory configured")
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := f.Path(brand)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Debugf("No scraped reviews for %s at %s", brand, path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	reviews, err := DecodeReviews(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logrus.Debugf("Loaded %d reviews for %s from %s", len(reviews), brand, path)
	return Dedupe(reviews), nil
}

// ReadFile loads and normalizes any scraper output file
func ReadFile(path string) ([]models.Review, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	reviews, err := DecodeReviews(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Dedupe(reviews), nil
}
