package categories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/brandpulse/review-analytics/internal/storage"
)

// KeywordsObject is the storage object holding the keyword configuration
const KeywordsObject = "config/keywords.json"

// BlobBackend keeps the keyword configuration as a single JSON object in storage
type BlobBackend struct {
	storage storage.StorageInterface
	mu      sync.Mutex
}

// Ensure BlobBackend implements Backend and Deleter
var (
	_ Backend = (*BlobBackend)(nil)
	_ Deleter = (*BlobBackend)(nil)
)

// NewBlobBackend creates a backend on top of the report storage
func NewBlobBackend(s storage.StorageInterface) *BlobBackend {
	return &BlobBackend{storage: s}
}

// Load reads the stored configuration. A missing object yields an empty map.
func (b *BlobBackend) Load(ctx context.Context) (map[string][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

// Save replaces one category's keywords, keeping the others
func (b *BlobBackend) Save(ctx context.Context, category string, keywords []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return err
	}
	all[category] = NormalizeList(keywords)
	return b.store(ctx, all)
}

// Delete drops a category. Deleting a missing category is not an error.
func (b *BlobBackend) Delete(ctx context.Context, category string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[category]; !ok {
		return nil
	}
	delete(all, category)
	return b.store(ctx, all)
}

func (b *BlobBackend) store(ctx context.Context, all map[string][]string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}
	return b.storage.Store(ctx, KeywordsObject, data)
}

func (b *BlobBackend) load(ctx context.Context) (map[string][]string, error) {
	data, err := b.storage.Retrieve(ctx, KeywordsObject)
	if errors.Is(err, storage.ErrNotFound) {
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords: %w", err)
	}

	all := map[string][]string{}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse keywords: %w", err)
	}
	return all, nil
}
