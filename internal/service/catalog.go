package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/sheets"
	"golang.org/x/sync/errgroup"
)

// SheetReader reads spreadsheet data rows and sheet titles.
type SheetReader interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
}

// CatalogConfig names the spreadsheets behind the public pages.
type CatalogConfig struct {
	FoodSpreadsheetID  string
	BooksSpreadsheetID string
	GearSpreadsheetID  string
	CacheTTL           time.Duration // Zero disables caching
}

const defaultSheet = "Sheet1"

// CatalogService serves the food guide, reading list and gear list.
type CatalogService struct {
	sheets SheetReader
	cfg    CatalogConfig
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// NewCatalogService creates a new CatalogService. reader may be nil when
// no API key is configured; every call then returns domain.ErrNotConfigured.
func NewCatalogService(reader SheetReader, cfg CatalogConfig) *CatalogService {
	return &CatalogService{
		sheets: reader,
		cfg:    cfg,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// Cities returns the food guide, one City per sheet in tab order.
func (s *CatalogService) Cities(ctx context.Context) ([]domain.City, error) {
	return cached(s, "food", func() ([]domain.City, error) {
		id, err := s.spreadsheet(s.cfg.FoodSpreadsheetID, "food")
		if err != nil {
			return nil, err
		}
		titles, err := s.sheets.SheetTitles(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list food sheets: %w", err)
		}

		cities := make([]domain.City, len(titles))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i, title := range titles {
			g.Go(func() error {
				rows, err := s.sheets.Values(gctx, id, title)
				if err != nil {
					return fmt.Errorf("read sheet %s: %w", title, err)
				}
				cities[i] = domain.City{Name: title, Restaurants: sheets.ParseRestaurants(rows, sheets.FoodEmoji)}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return cities, nil
	})
}

// Books returns the reading list.
func (s *CatalogService) Books(ctx context.Context) ([]domain.Book, error) {
	return cached(s, "books", func() ([]domain.Book, error) {
		id, err := s.spreadsheet(s.cfg.BooksSpreadsheetID, "books")
		if err != nil {
			return nil, err
		}
		rows, err := s.sheets.Values(ctx, id, defaultSheet)
		if err != nil {
			return nil, fmt.Errorf("read books: %w", err)
		}
		return sheets.ParseBooks(rows, sheets.BookEmoji), nil
	})
}

// Gear returns the gear list grouped by category.
func (s *CatalogService) Gear(ctx context.Context) ([]domain.GearSection, error) {
	return cached(s, "gear", func() ([]domain.GearSection, error) {
		id, err := s.spreadsheet(s.cfg.GearSpreadsheetID, "gear")
		if err != nil {
			return nil, err
		}
		rows, err := s.sheets.Values(ctx, id, defaultSheet)
		if err != nil {
			return nil, fmt.Errorf("read gear: %w", err)
		}
		return sheets.ParseGear(rows), nil
	})
}

func (s *CatalogService) spreadsheet(id, name string) (string, error) {
	if s.sheets == nil || id == "" {
		return "", fmt.Errorf("%w: %s spreadsheet", domain.ErrNotConfigured, name)
	}
	return id, nil
}

// cached returns the value stored under key, loading it on a miss. Errors
// are not cached.
func cached[T any](s *CatalogService, key string, load func() (T, error)) (T, error) {
	if s.cfg.CacheTTL > 0 {
		s.mu.Lock()
		e, ok := s.cache[key]
		s.mu.Unlock()
		if ok && s.now().Before(e.expires) {
			return e.value.(T), nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if s.cfg.CacheTTL > 0 {
		s.mu.Lock()
		s.cache[key] = cacheEntry{value: v, expires: s.now().Add(s.cfg.CacheTTL)}
		s.mu.Unlock()
	}
	return v, nil
}
