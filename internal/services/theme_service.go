package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ajramos/formsmith/internal/db"
	"github.com/ajramos/formsmith/internal/schema"
)

// ThemeServiceImpl implements ThemeService on top of the SQLite theme store
type ThemeServiceImpl struct {
	owners OwnerService
	themes *db.ThemeStore
	logger zerolog.Logger
}

// NewThemeService creates a new theme service
func NewThemeService(owners OwnerService, themes *db.ThemeStore, logger zerolog.Logger) *ThemeServiceImpl {
	return &ThemeServiceImpl{
		owners: owners,
		themes: themes,
		logger: logger.With().Str("component", "theme_service").Logger(),
	}
}

// GetTheme returns the stored theme of the owner with email. An owner that
// never saved gets a record with Found false.
func (s *ThemeServiceImpl) GetTheme(ctx context.Context, email string) (ThemeRecord, error) {
	owner, err := s.owners.EnsureOwner(ctx, email)
	if err != nil {
		return ThemeRecord{}, err
	}
	stored, err := s.themes.Get(ctx, owner.ID)
	if errors.Is(err, db.ErrNotFound) {
		return ThemeRecord{SiteKey: owner.SiteKey}, nil
	}
	if err != nil {
		return ThemeRecord{}, loadError(err)
	}
	return ThemeRecord{
		Theme:    stored.Theme,
		Revision: stored.Revision,
		Found:    true,
		SiteKey:  owner.SiteKey,
	}, nil
}

// SaveTheme stores a normalized copy of theme when revision is newer than the
// stored one. Lint findings are logged and never block the save.
func (s *ThemeServiceImpl) SaveTheme(ctx context.Context, email string, revision uint64, theme schema.ThemeConfig) (bool, error) {
	if revision == 0 {
		return false, fmt.Errorf("%w: revision must be positive", ErrInvalidInput)
	}
	owner, err := s.owners.EnsureOwner(ctx, email)
	if err != nil {
		return false, err
	}

	for _, issue := range schema.Lint(theme) {
		s.logger.Warn().Str("owner", owner.Email).Str("field", issue.Field).Msg(issue.Message)
	}

	applied, err := s.themes.Save(ctx, owner.ID, revision, schema.Validate(theme))
	if err != nil {
		return false, fmt.Errorf("failed to save theme: %w", err)
	}
	if !applied {
		s.logger.Debug().Str("owner", owner.Email).Uint64("revision", revision).Msg("ignored stale theme revision")
	}
	return applied, nil
}

// SaveThemeNext stores a normalized copy of theme under the revision after
// the stored one and returns that revision. It serves callers that do not
// track revisions themselves.
func (s *ThemeServiceImpl) SaveThemeNext(ctx context.Context, email string, theme schema.ThemeConfig) (uint64, error) {
	owner, err := s.owners.EnsureOwner(ctx, email)
	if err != nil {
		return 0, err
	}
	for _, issue := range schema.Lint(theme) {
		s.logger.Warn().Str("owner", owner.Email).Str("field", issue.Field).Msg(issue.Message)
	}
	revision, err := s.themes.SaveNext(ctx, owner.ID, schema.Validate(theme))
	if err != nil {
		return 0, fmt.Errorf("failed to save theme: %w", err)
	}
	return revision, nil
}

// GetThemeBySiteKey returns the theme shown by a public form. A known site
// whose owner never saved renders the default theme.
func (s *ThemeServiceImpl) GetThemeBySiteKey(ctx context.Context, siteKey string) (schema.ThemeConfig, error) {
	stored, err := s.themes.GetBySiteKey(ctx, siteKey)
	if errors.Is(err, db.ErrNotFound) {
		// unknown site, or an owner who never saved
		if _, err := s.owners.OwnerBySiteKey(ctx, siteKey); err != nil {
			return schema.ThemeConfig{}, err
		}
		return schema.Default(), nil
	}
	if err != nil {
		return schema.ThemeConfig{}, loadError(err)
	}
	return schema.Validate(stored.Theme), nil
}

func loadError(err error) error {
	if errors.Is(err, db.ErrCorrupt) {
		return fmt.Errorf("%w: %v", ErrDataCorrupted, err)
	}
	return fmt.Errorf("failed to load theme: %w", err)
}
