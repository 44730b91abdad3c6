// Package categories manages the keyword category configuration.
//
// Store keeps the working copy in memory and mirrors every mutation to a
// Backend in the background. Persistence is fire-and-forget: failures are
// logged and never returned, so the local copy can silently drift from the
// backend until the next Reload. Writes reach the backend in mutation order,
// so concurrent edits are last-write-wins.
package categories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/brandpulse/review-analytics/internal/lexicon"
	"github.com/brandpulse/review-analytics/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyKeyword        = errors.New("keyword must not be empty")
	ErrEmptyCategoryName   = errors.New("category name must not be empty")
	ErrInvalidCategoryName = errors.New("category name must start with an upper-case letter and contain no colon or line break")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrNoCategories        = errors.New("bulk edit contains no category headers")
)

// Backend persists category keyword lists keyed by category name
type Backend interface {
	Load(ctx context.Context) (map[string][]string, error)
	Save(ctx context.Context, category string, keywords []string) error
}

// Reprocessor is implemented by backends that can re-run classification over stored reviews
type Reprocessor interface {
	TriggerReprocess(ctx context.Context) error
}

// Deleter is implemented by backends that can drop a whole category
type Deleter interface {
	Delete(ctx context.Context, category string) error
}

// Store is the in-memory category configuration
type Store struct {
	backend Backend
	timeout time.Duration

	mu         sync.RWMutex
	categories []models.KeywordCategory
	// removed holds categories dropped locally that the backend may still hold
	removed map[string]bool

	qmu      sync.Mutex
	queue    []func(context.Context)
	draining bool
	pending  sync.WaitGroup
}

// NewStore creates a store seeded with the default categories. backend may be nil.
func NewStore(backend Backend) *Store {
	return &Store{
		backend:    backend,
		timeout:    15 * time.Second,
		categories: defaults(),
		removed:    make(map[string]bool),
	}
}

func defaults() []models.KeywordCategory {
	cats := lexicon.DefaultCategories()
	for i := range cats {
		cats[i].Keywords = NormalizeList(cats[i].Keywords)
	}
	return cats
}

// Categories returns a copy of every category in display order
func (s *Store) Categories() []models.KeywordCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.categories)
}

// Names returns the category names in display order
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.categories))
	for i, c := range s.categories {
		names[i] = c.Name
	}
	return names
}

// Keywords returns a copy of one category's keywords
func (s *Store) Keywords(name string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(name)
	if i < 0 {
		return nil, false
	}
	return append([]string{}, s.categories[i].Keywords...), true
}

// Map returns category name -> keywords, the shape consumed by the matcher and aggregator
func (s *Store) Map() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := make(map[string][]string, len(s.categories))
	for _, c := range s.categories {
		m[c.Name] = append([]string{}, c.Keywords...)
	}
	return m
}

// AddKeyword adds a keyword to a category. It reports false when the keyword was already present.
func (s *Store) AddKeyword(category, keyword string) (bool, error) {
	kw := NormalizeKeyword(keyword)
	if kw == "" {
		return false, ErrEmptyKeyword
	}

	s.mu.Lock()
	i := s.index(category)
	if i < 0 {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	for _, existing := range s.categories[i].Keywords {
		if existing == kw {
			s.mu.Unlock()
			return false, nil
		}
	}
	s.categories[i].Keywords = NormalizeList(append(s.categories[i].Keywords, kw))
	s.persist(clone(s.categories[i : i+1])...)
	s.mu.Unlock()

	logrus.Debugf("Added keyword %q to %s", kw, category)
	return true, nil
}

// RemoveKeyword removes a keyword from a category. It reports false when nothing was removed.
func (s *Store) RemoveKeyword(category, keyword string) bool {
	kw := NormalizeKeyword(keyword)

	s.mu.Lock()
	i := s.index(category)
	if i < 0 || kw == "" {
		s.mu.Unlock()
		return false
	}
	kept := make([]string, 0, len(s.categories[i].Keywords))
	for _, existing := range s.categories[i].Keywords {
		if existing != kw {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(s.categories[i].Keywords) {
		s.mu.Unlock()
		return false
	}
	s.categories[i].Keywords = kept
	s.persist(clone(s.categories[i : i+1])...)
	s.mu.Unlock()

	logrus.Debugf("Removed keyword %q from %s", kw, category)
	return true
}

// BulkReplace replaces a category's keyword list, creating the category if needed.
// Keywords are normalized, de-duplicated and sorted before storage. The name
// must be readable as a bulk-edit header (see ValidCategoryName).
func (s *Store) BulkReplace(category string, keywords []string) error {
	if category == "" {
		return ErrEmptyCategoryName
	}
	if !ValidCategoryName(category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategoryName, category)
	}
	normalized := NormalizeList(keywords)

	s.mu.Lock()
	if i := s.index(category); i >= 0 {
		s.categories[i].Keywords = normalized
	} else {
		s.categories = append(s.categories, models.KeywordCategory{Name: category, Keywords: normalized})
		delete(s.removed, category)
	}
	s.persist(models.KeywordCategory{Name: category, Keywords: append([]string{}, normalized...)})
	s.mu.Unlock()

	return nil
}

// ResetToDefaults restores the built-in categories and their seed keywords
func (s *Store) ResetToDefaults() {
	s.mu.Lock()
	s.replaceAll(defaults())
	s.reprocess()
	s.mu.Unlock()

	logrus.Info("Keyword categories reset to defaults")
}

// ApplyBulkEdit replaces the whole configuration with the categories parsed
// from text. Text without any category header leaves the store untouched.
func (s *Store) ApplyBulkEdit(text string) ([]models.KeywordCategory, error) {
	parsed := ParseBulkEdit(text)
	if len(parsed) == 0 {
		return nil, ErrNoCategories
	}

	s.mu.Lock()
	s.replaceAll(clone(parsed))
	s.reprocess()
	s.mu.Unlock()

	logrus.Infof("Applied bulk edit with %d categories", len(parsed))
	return clone(parsed), nil
}

// replaceAll swaps the configuration, remembers dropped names and queues the
// writes. It must be called with s.mu held.
func (s *Store) replaceAll(cats []models.KeywordCategory) {
	kept := make(map[string]bool, len(cats))
	for _, c := range cats {
		kept[c.Name] = true
		delete(s.removed, c.Name)
	}

	var dropped []string
	for _, c := range s.categories {
		if !kept[c.Name] {
			s.removed[c.Name] = true
			dropped = append(dropped, c.Name)
		}
	}

	s.categories = cats
	s.persist(clone(cats)...)
	s.drop(dropped...)
}

// BulkText renders the current configuration in the bulk-edit format
func (s *Store) BulkText() string {
	return Serialize(s.Categories())
}

// Reload replaces local keyword lists with the backend's copy. Categories
// unknown locally are appended in name order, unless they were removed by a
// bulk edit or reset, or their name is not a valid header. An empty backend
// response keeps the local configuration.
func (s *Store) Reload(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	// local edits still in flight are newer than the backend copy
	s.Flush()

	remote, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load keyword categories: %w", err)
	}
	if len(remote) == 0 {
		logrus.Debug("Keyword backend returned no categories, keeping local configuration")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool, len(s.categories))
	for i := range s.categories {
		name := s.categories[i].Name
		known[name] = true
		if kws, ok := remote[name]; ok {
			s.categories[i].Keywords = NormalizeList(kws)
		}
	}

	var extra []string
	for name := range remote {
		if !known[name] && !s.removed[name] && ValidCategoryName(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		s.categories = append(s.categories, models.KeywordCategory{Name: name, Keywords: NormalizeList(remote[name])})
	}

	logrus.Infof("Reloaded %d keyword categories from backend", len(remote))
	return nil
}

// Save writes every category to the backend and waits for the result
func (s *Store) Save(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	var errs []error
	for _, c := range s.Categories() {
		if err := s.backend.Save(ctx, c.Name, c.Keywords); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to save keyword categories: %w", errors.Join(errs...))
	}
	return nil
}

// Flush blocks until background persistence queued so far has finished
func (s *Store) Flush() {
	s.pending.Wait()
}

// enqueue runs job on the single persistence worker, after every job queued before it
func (s *Store) enqueue(job func(ctx context.Context)) {
	s.pending.Add(1)

	s.qmu.Lock()
	defer s.qmu.Unlock()
	s.queue = append(s.queue, job)
	if !s.draining {
		s.draining = true
		go s.drain()
	}
}

func (s *Store) drain() {
	for {
		s.qmu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.qmu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		job(ctx)
		cancel()
		s.pending.Done()
	}
}

// persist, drop and reprocess are called with s.mu held so jobs queue in mutation order
func (s *Store) persist(cats ...models.KeywordCategory) {
	if s.backend == nil || len(cats) == 0 {
		return
	}
	s.enqueue(func(ctx context.Context) {
		for _, c := range cats {
			if err := s.backend.Save(ctx, c.Name, c.Keywords); err != nil {
				logrus.Warnf("Failed to persist keywords for %s: %v", c.Name, err)
			}
		}
	})
}

func (s *Store) drop(names ...string) {
	d, ok := s.backend.(Deleter)
	if !ok || len(names) == 0 {
		return
	}
	s.enqueue(func(ctx context.Context) {
		for _, name := range names {
			if err := d.Delete(ctx, name); err != nil {
				logrus.Warnf("Failed to delete keyword category %s: %v", name, err)
			}
		}
	})
}

func (s *Store) reprocess() {
	r, ok := s.backend.(Reprocessor)
	if !ok {
		return
	}
	s.enqueue(func(ctx context.Context) {
		if err := r.TriggerReprocess(ctx); err != nil {
			logrus.Warnf("Failed to trigger review reprocessing: %v", err)
		}
	})
}

// index must be called with s.mu held
func (s *Store) index(name string) int {
	for i, c := range s.categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func clone(cats []models.KeywordCategory) []models.KeywordCategory {
	out := make([]models.KeywordCategory, len(cats))
	for i, c := range cats {
		out[i] = models.KeywordCategory{Name: c.Name, Keywords: append([]string{}, c.Keywords...)}
	}
	return out
}
