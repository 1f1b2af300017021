package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ajramos/formsmith/internal/db"
	"github.com/ajramos/formsmith/internal/schema"
)

// SubmissionServiceImpl implements SubmissionService
type SubmissionServiceImpl struct {
	subs   *db.SubmissionStore
	themes ThemeService
	logger zerolog.Logger
	now    func() time.Time
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(subs *db.SubmissionStore, themes ThemeService, logger zerolog.Logger) *SubmissionServiceImpl {
	return &SubmissionServiceImpl{
		subs:   subs,
		themes: themes,
		logger: logger.With().Str("component", "submission_service").Logger(),
		now:    time.Now,
	}
}

// Submit records the values posted to the form of siteKey. Values for
// required visible fields must be present; unknown keys are stored as sent.
func (s *SubmissionServiceImpl) Submit(ctx context.Context, siteKey string, values map[string]any) (db.Submission, error) {
	theme, err := s.themes.GetThemeBySiteKey(ctx, siteKey)
	if err != nil {
		return db.Submission{}, err
	}
	if missing := missingRequired(theme.Fields, values); len(missing) > 0 {
		return db.Submission{}, fmt.Errorf("%w: %s", ErrMissingFieldValue, strings.Join(missing, ", "))
	}

	sub := db.Submission{
		ID:        uuid.NewString(),
		SiteKey:   siteKey,
		Values:    values,
		CreatedAt: s.now(),
	}
	if err := s.subs.Add(ctx, sub); err != nil {
		return db.Submission{}, fmt.Errorf("failed to store submission: %w", err)
	}
	s.logger.Info().Str("site_key", siteKey).Str("id", sub.ID).Msg("submission stored")
	return sub, nil
}

// List returns the newest submissions of siteKey first
func (s *SubmissionServiceImpl) List(ctx context.Context, siteKey string, limit int) ([]db.Submission, error) {
	if strings.TrimSpace(siteKey) == "" {
		return nil, fmt.Errorf("%w: site key required", ErrInvalidInput)
	}
	subs, err := s.subs.List(ctx, siteKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// Analytics returns the submission count of siteKey and when the latest arrived
func (s *SubmissionServiceImpl) Analytics(ctx context.Context, siteKey string) (Analytics, error) {
	if strings.TrimSpace(siteKey) == "" {
		return Analytics{}, fmt.Errorf("%w: site key required", ErrInvalidInput)
	}
	count, latest, err := s.subs.Stats(ctx, siteKey)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to compute analytics: %w", err)
	}
	out := Analytics{Count: count}
	if !latest.IsZero() {
		out.LatestSubmission = &latest
	}
	return out, nil
}

// missingRequired names the required visible fields without a usable value.
// A required checkbox must be checked.
func missingRequired(fields []schema.FieldDefinition, values map[string]any) []string {
	var missing []string
	for _, f := range fields {
		if !f.Required || !f.Visible {
			continue
		}
		v, ok := values[f.Name]
		switch val := v.(type) {
		case nil:
			ok = false
		case string:
			ok = strings.TrimSpace(val) != ""
		case bool:
			ok = val
		}
		if !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
