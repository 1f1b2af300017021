package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// ErrCorrupt is returned when a stored payload cannot be decoded
var ErrCorrupt = errors.New("corrupt payload")

// Owner is an operator account. SiteKey identifies the owner's public form.
type Owner struct {
	ID        int64
	Email     string
	SiteKey   string
	CreatedAt time.Time
}

// OwnerStore handles owner rows
type OwnerStore struct {
	db *sql.DB
}

// NewOwnerStore creates a new owner store from a base store
func NewOwnerStore(store *Store) *OwnerStore {
	if store == nil {
		return nil
	}
	return &OwnerStore{db: store.DB()}
}

// Ensure returns the owner with email, creating it with siteKey when absent.
// An existing owner keeps its original site key.
func (s *OwnerStore) Ensure(ctx context.Context, email, siteKey string) (Owner, error) {
	if s == nil || s.db == nil {
		return Owner{}, fmt.Errorf("owner store not initialized")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(siteKey) == "" {
		return Owner{}, fmt.Errorf("invalid owner inputs")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO owners(email, site_key, created_at) VALUES(?,?,?)
ON CONFLICT(email) DO NOTHING;`, email, siteKey, time.Now().Unix())
	if err != nil {
		return Owner{}, fmt.Errorf("insert owner: %w", err)
	}
	return s.ByEmail(ctx, email)
}

// ByEmail looks an owner up by email
func (s *OwnerStore) ByEmail(ctx context.Context, email string) (Owner, error) {
	return s.one(ctx, `SELECT id, email, site_key, created_at FROM owners WHERE email=?`, strings.ToLower(strings.TrimSpace(email)))
}

// BySiteKey looks an owner up by site key
func (s *OwnerStore) BySiteKey(ctx context.Context, siteKey string) (Owner, error) {
	return s.one(ctx, `SELECT id, email, site_key, created_at FROM owners WHERE site_key=?`, siteKey)
}

func (s *OwnerStore) one(ctx context.Context, query string, arg any) (Owner, error) {
	if s == nil || s.db == nil {
		return Owner{}, fmt.Errorf("owner store not initialized")
	}
	var o Owner
	var created int64
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&o.ID, &o.Email, &o.SiteKey, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Owner{}, ErrNotFound
	}
	if err != nil {
		return Owner{}, err
	}
	o.CreatedAt = time.Unix(created, 0)
	return o, nil
}
