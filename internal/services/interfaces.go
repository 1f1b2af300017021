package services

import (
	"context"
	"time"

	"github.com/ajramos/formsmith/internal/db"
	"github.com/ajramos/formsmith/internal/schema"
)

// OwnerService manages operator accounts and their public site keys
type OwnerService interface {
	EnsureOwner(ctx context.Context, email string) (db.Owner, error)
	OwnerBySiteKey(ctx context.Context, siteKey string) (db.Owner, error)
}

// ThemeService stores one theme per owner
type ThemeService interface {
	GetTheme(ctx context.Context, email string) (ThemeRecord, error)
	// SaveTheme reports whether the revision was newer than the stored one
	SaveTheme(ctx context.Context, email string, revision uint64, theme schema.ThemeConfig) (bool, error)
	// SaveThemeNext stores theme under the next revision and returns it
	SaveThemeNext(ctx context.Context, email string, theme schema.ThemeConfig) (uint64, error)
	GetThemeBySiteKey(ctx context.Context, siteKey string) (schema.ThemeConfig, error)
}

// PresetService handles the library of named themes kept as YAML files
type PresetService interface {
	ListPresets(ctx context.Context) ([]string, error)
	LoadPreset(ctx context.Context, name string) (schema.ThemeConfig, error)
	SavePreset(ctx context.Context, name string, theme schema.ThemeConfig) error
}

// SubmissionService records and reports form submissions
type SubmissionService interface {
	Submit(ctx context.Context, siteKey string, values map[string]any) (db.Submission, error)
	List(ctx context.Context, siteKey string, limit int) ([]db.Submission, error)
	Analytics(ctx context.Context, siteKey string) (Analytics, error)
}

// ThemeRecord is an owner's stored theme. Found is false when the owner has
// never saved one, in which case Theme is empty and clients use the default.
type ThemeRecord struct {
	Theme    schema.ThemeConfig
	Revision uint64
	Found    bool
	SiteKey  string
}

// Analytics summarizes the submissions of one form
type Analytics struct {
	Count            int        `json:"count"`
	LatestSubmission *time.Time `json:"latestSubmission"`
}
