package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ajramos/formsmith/internal/db"
)

// OwnerServiceImpl implements OwnerService
type OwnerServiceImpl struct {
	owners   *db.OwnerStore
	validate *validator.Validate
	newKey   func() string
}

// NewOwnerService creates a new owner service. Site keys are random UUIDs.
func NewOwnerService(owners *db.OwnerStore) *OwnerServiceImpl {
	return &OwnerServiceImpl{
		owners:   owners,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		newKey:   func() string { return uuid.NewString() },
	}
}

// EnsureOwner returns the owner with email, creating it on first use
func (s *OwnerServiceImpl) EnsureOwner(ctx context.Context, email string) (db.Owner, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return db.Owner{}, fmt.Errorf("%w: owner email %q", ErrInvalidInput, email)
	}
	owner, err := s.owners.Ensure(ctx, email, s.newKey())
	if err != nil {
		return db.Owner{}, fmt.Errorf("ensure owner: %w", err)
	}
	return owner, nil
}

// OwnerBySiteKey returns the owner of a public form
func (s *OwnerServiceImpl) OwnerBySiteKey(ctx context.Context, siteKey string) (db.Owner, error) {
	if strings.TrimSpace(siteKey) == "" {
		return db.Owner{}, fmt.Errorf("%w: site key required", ErrInvalidInput)
	}
	owner, err := s.owners.BySiteKey(ctx, siteKey)
	if errors.Is(err, db.ErrNotFound) {
		return db.Owner{}, fmt.Errorf("%w: %s", ErrUnknownSiteKey, siteKey)
	}
	if err != nil {
		return db.Owner{}, fmt.Errorf("lookup site key: %w", err)
	}
	return owner, nil
}
