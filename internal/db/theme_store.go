package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ajramos/formsmith/internal/schema"
)

// StoredTheme is a theme row together with its revision
type StoredTheme struct {
	OwnerID   int64
	Revision  uint64
	Theme     schema.ThemeConfig
	UpdatedAt time.Time
}

// ThemeStore persists one theme per owner as a msgpack blob
type ThemeStore struct {
	db *sql.DB
}

// NewThemeStore creates a new theme store from a base store
func NewThemeStore(store *Store) *ThemeStore {
	if store == nil {
		return nil
	}
	return &ThemeStore{db: store.DB()}
}

// Save stores theme for ownerID when revision is higher than the stored one.
// It reports whether the row was written; an older revision is ignored.
func (ts *ThemeStore) Save(ctx context.Context, ownerID int64, revision uint64, theme schema.ThemeConfig) (bool, error) {
	if ts == nil || ts.db == nil {
		return false, fmt.Errorf("theme store not initialized")
	}
	payload, err := encodeTheme(theme)
	if err != nil {
		return false, err
	}
	res, err := ts.db.ExecContext(ctx, `INSERT INTO themes(owner_id, revision, payload, updated_at)
VALUES(?,?,?,?)
ON CONFLICT(owner_id) DO UPDATE SET revision=excluded.revision, payload=excluded.payload, updated_at=excluded.updated_at
WHERE excluded.revision > themes.revision;
`, ownerID, int64(revision), payload, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("save theme: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveNext stores theme for ownerID under the revision after the stored one
// and returns it. An owner without a row starts at revision 1.
func (ts *ThemeStore) SaveNext(ctx context.Context, ownerID int64, theme schema.ThemeConfig) (uint64, error) {
	if ts == nil || ts.db == nil {
		return 0, fmt.Errorf("theme store not initialized")
	}
	payload, err := encodeTheme(theme)
	if err != nil {
		return 0, err
	}
	var revision int64
	err = ts.db.QueryRowContext(ctx, `INSERT INTO themes(owner_id, revision, payload, updated_at)
VALUES(?,1,?,?)
ON CONFLICT(owner_id) DO UPDATE SET revision=themes.revision+1, payload=excluded.payload, updated_at=excluded.updated_at
RETURNING revision;
`, ownerID, payload, time.Now().Unix()).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("save theme: %w", err)
	}
	return uint64(revision), nil
}

// Get returns the stored theme of ownerID, or ErrNotFound
func (ts *ThemeStore) Get(ctx context.Context, ownerID int64) (StoredTheme, error) {
	return ts.one(ctx, `SELECT owner_id, revision, payload, updated_at FROM themes WHERE owner_id=?`, ownerID)
}

// GetBySiteKey returns the stored theme of the owner holding siteKey, or ErrNotFound
func (ts *ThemeStore) GetBySiteKey(ctx context.Context, siteKey string) (StoredTheme, error) {
	return ts.one(ctx, `SELECT t.owner_id, t.revision, t.payload, t.updated_at
FROM themes t JOIN owners o ON o.id = t.owner_id WHERE o.site_key=?`, siteKey)
}

func (ts *ThemeStore) one(ctx context.Context, query string, arg any) (StoredTheme, error) {
	if ts == nil || ts.db == nil {
		return StoredTheme{}, fmt.Errorf("theme store not initialized")
	}
	var (
		st       StoredTheme
		revision int64
		payload  []byte
		updated  int64
	)
	err := ts.db.QueryRowContext(ctx, query, arg).Scan(&st.OwnerID, &revision, &payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredTheme{}, ErrNotFound
	}
	if err != nil {
		return StoredTheme{}, err
	}
	if st.Theme, err = decodeTheme(payload); err != nil {
		return StoredTheme{}, err
	}
	st.Revision = uint64(revision)
	st.UpdatedAt = time.Unix(updated, 0)
	return st, nil
}

// themes are encoded with their JSON attribute names so blobs stay readable
// by any msgpack tool using the public field names
func encodeTheme(theme schema.ThemeConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(theme); err != nil {
		return nil, fmt.Errorf("failed to marshal theme: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeTheme(data []byte) (schema.ThemeConfig, error) {
	var theme schema.ThemeConfig
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&theme); err != nil {
		return schema.ThemeConfig{}, fmt.Errorf("%w: failed to unmarshal theme: %v", ErrCorrupt, err)
	}
	return theme, nil
}
