package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Submission is one set of values posted through a public form
type Submission struct {
	ID        string
	SiteKey   string
	Values    map[string]any
	CreatedAt time.Time
}

// SubmissionStore handles form submissions
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore creates a new submission store from a base store
func NewSubmissionStore(store *Store) *SubmissionStore {
	if store == nil {
		return nil
	}
	return &SubmissionStore{db: store.DB()}
}

// Add inserts a submission
func (ss *SubmissionStore) Add(ctx context.Context, sub Submission) error {
	if ss == nil || ss.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	if strings.TrimSpace(sub.ID) == "" || strings.TrimSpace(sub.SiteKey) == "" {
		return fmt.Errorf("invalid submission inputs")
	}
	payload, err := msgpack.Marshal(sub.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	_, err = ss.db.ExecContext(ctx, `INSERT INTO submissions(id, site_key, payload, created_at) VALUES(?,?,?,?)`,
		sub.ID, sub.SiteKey, payload, sub.CreatedAt.UnixMilli())
	return err
}

// List returns the submissions of siteKey, newest first. limit <= 0 means all.
func (ss *SubmissionStore) List(ctx context.Context, siteKey string, limit int) ([]Submission, error) {
	if ss == nil || ss.db == nil {
		return nil, fmt.Errorf("submission store not initialized")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := ss.db.QueryContext(ctx, `SELECT id, site_key, payload, created_at FROM submissions
WHERE site_key=? ORDER BY created_at DESC, rowid DESC LIMIT ?`, siteKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var (
			sub     Submission
			payload []byte
			created int64
		)
		if err := rows.Scan(&sub.ID, &sub.SiteKey, &payload, &created); err != nil {
			return nil, err
		}
		if err := msgpack.Unmarshal(payload, &sub.Values); err != nil {
			return nil, fmt.Errorf("failed to unmarshal submission %s: %w", sub.ID, err)
		}
		sub.CreatedAt = time.UnixMilli(created)
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Stats returns the number of submissions for siteKey and the newest one's time.
// The time is zero when there are none.
func (ss *SubmissionStore) Stats(ctx context.Context, siteKey string) (int, time.Time, error) {
	if ss == nil || ss.db == nil {
		return 0, time.Time{}, fmt.Errorf("submission store not initialized")
	}
	var (
		count  int
		latest sql.NullInt64
	)
	err := ss.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(created_at) FROM submissions WHERE site_key=?`, siteKey).Scan(&count, &latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, err
	}
	if !latest.Valid {
		return count, time.Time{}, nil
	}
	return count, time.UnixMilli(latest.Int64), nil
}
