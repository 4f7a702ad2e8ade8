package catalog

import (
	"context"
	"fmt"
	"time"

	"pos-terminal/internal/model"
	"pos-terminal/internal/storage"

	"github.com/rs/zerolog"
)

// MenuAPI is the slice of the backend the catalog needs.
type MenuAPI interface {
	Layouts(ctx context.Context, locationID int) ([]model.MenuCategory, error)
	LayoutItems(ctx context.Context, layoutID, locationID int) ([]model.MenuItemAssignment, error)
}

// Service keeps the local menu replica fresh and serves reads live-first
// with a cache fallback, so order capture keeps working with no network.
type Service struct {
	api        MenuAPI
	cache      storage.MenuCache
	locationID int
	logger     zerolog.Logger
}

// NewService creates the catalog service for one location.
func NewService(api MenuAPI, cache storage.MenuCache, locationID int, logger zerolog.Logger) *Service {
	return &Service{
		api:        api,
		cache:      cache,
		locationID: locationID,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

// Sync replaces the cached menu with a fresh copy from the backend. Item
// fetches run strictly one category at a time; a parallel burst here has
// taken the backend down before. A category whose item fetch fails is
// cached with an empty assignment list rather than aborting the sync.
func (s *Service) Sync(ctx context.Context) error {
	categories, err := s.api.Layouts(ctx, s.locationID)
	if err != nil {
		return fmt.Errorf("menu sync: %w", err)
	}

	assignments := make(map[int][]model.MenuItemAssignment, len(categories))
	for _, cat := range categories {
		items, err := s.api.LayoutItems(ctx, cat.ID, s.locationID)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("category_id", cat.ID).
				Str("category", cat.Name).
				Msg("item fetch failed, caching category with no items")
			assignments[cat.ID] = nil
			continue
		}
		assignments[cat.ID] = items
	}

	if err := s.cache.Replace(ctx, s.locationID, categories, assignments); err != nil {
		return fmt.Errorf("menu sync: %w", err)
	}

	s.logger.Info().
		Int("categories", len(categories)).
		Msg("menu sync completed")

	return nil
}

// Categories returns the live category list, falling back to the cache on
// any backend failure.
func (s *Service) Categories(ctx context.Context) ([]model.MenuCategory, error) {
	categories, err := s.api.Layouts(ctx, s.locationID)
	if err == nil {
		return categories, nil
	}

	s.logger.Warn().Err(err).Msg("live category fetch failed, serving cached menu")
	return s.cache.Categories(ctx, s.locationID)
}

// Assignments returns one category's live item assignments, falling back to
// the cache on any backend failure.
func (s *Service) Assignments(ctx context.Context, categoryID int) ([]model.MenuItemAssignment, error) {
	items, err := s.api.LayoutItems(ctx, categoryID, s.locationID)
	if err == nil {
		return items, nil
	}

	s.logger.Warn().
		Err(err).
		Int("category_id", categoryID).
		Msg("live item fetch failed, serving cached assignments")
	return s.cache.Assignments(ctx, categoryID)
}

// RunPeriodic re-syncs on the given interval until ctx is cancelled. Sync
// failures are logged and retried next tick; reads are never blocked on it.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("periodic menu sync failed")
			}
		}
	}
}
