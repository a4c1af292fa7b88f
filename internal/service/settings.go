package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
)

// StoreFactory builds a content store for the repository named in settings.
// Credentials come from process configuration, never from settings.
type StoreFactory func(settings domain.Settings) (domain.ContentStore, error)

// SettingsService manages remembered settings and resolves the workspace
// gallery sessions run against.
type SettingsService struct {
	repo     domain.SettingsRepository
	defaults domain.Settings
	stores   StoreFactory
	now      func() time.Time
}

// NewSettingsService creates a new SettingsService. defaults apply until
// settings are saved.
func NewSettingsService(repo domain.SettingsRepository, defaults domain.Settings, stores StoreFactory) *SettingsService {
	return &SettingsService{repo: repo, defaults: defaults, stores: stores, now: time.Now}
}

// Get returns the remembered settings, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	saved, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return *saved, nil
}

// Save validates and remembers settings.
func (s *SettingsService) Save(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	settings.RepoOwner = strings.TrimSpace(settings.RepoOwner)
	settings.RepoName = strings.TrimSpace(settings.RepoName)
	settings.Branch = strings.TrimSpace(settings.Branch)
	if settings.Branch == "" {
		settings.Branch = s.defaults.Branch
	}

	var err error
	if settings.GalleryPath, err = cleanRepoPath(settings.GalleryPath, "gallery path"); err != nil {
		return domain.Settings{}, err
	}
	if settings.ImageDir, err = cleanRepoPath(settings.ImageDir, "image directory"); err != nil {
		return domain.Settings{}, err
	}
	if settings.MaxWidth < 100 || settings.MaxWidth > 10000 {
		return domain.Settings{}, fmt.Errorf("%w: max width must be between 100 and 10000", domain.ErrInvalidInput)
	}
	if settings.JPEGQuality < 1 || settings.JPEGQuality > 100 {
		return domain.Settings{}, fmt.Errorf("%w: jpeg quality must be between 1 and 100", domain.ErrInvalidInput)
	}

	settings.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

// Workspace implements WorkspaceResolver.
func (s *SettingsService) Workspace(ctx context.Context) (*Workspace, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	store, err := s.stores(settings)
	if err != nil {
		return nil, err
	}
	return &Workspace{Store: store, Settings: settings}, nil
}

// cleanRepoPath normalizes a path inside the repository.
func cleanRepoPath(p, name string) (string, error) {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "", fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name)
	}
	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %s must stay inside the repository", domain.ErrInvalidInput, name)
	}
	return p, nil
}
