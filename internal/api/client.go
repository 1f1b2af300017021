package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/ajramos/formsmith/internal/persist"
	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/services"
	"github.com/ajramos/formsmith/pkg/auth"
)

// StatusError is a non-2xx answer from the server
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Client talks to a Formsmith server on behalf of one owner. It loads and
// saves the owner's theme for an editing session.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL. Requests carry the
// bearer token from src.
func NewClient(ctx context.Context, baseURL string, src oauth2.TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    auth.NewHTTPClient(ctx, src),
	}
}

// ThemeState is the owner's theme as the server holds it
type ThemeState struct {
	Theme    schema.ThemeConfig
	Revision uint64
	SiteKey  string
	// Stored is false when the owner never saved and Theme is the default
	Stored bool
}

// FetchTheme retrieves the owner's theme
func (c *Client) FetchTheme(ctx context.Context) (ThemeState, error) {
	var resp struct {
		Theme    json.RawMessage `json:"theme"`
		Revision uint64          `json:"revision"`
		SiteKey  string          `json:"siteKey"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/theme", nil, nil, &resp); err != nil {
		return ThemeState{}, err
	}
	theme, err := schema.Decode(resp.Theme)
	if err != nil {
		return ThemeState{}, err
	}
	raw := strings.TrimSpace(string(resp.Theme))
	return ThemeState{
		Theme:    theme,
		Revision: resp.Revision,
		SiteKey:  resp.SiteKey,
		Stored:   raw != "" && raw != "{}" && raw != "null",
	}, nil
}

// LoadTheme returns the owner's theme and its revision. Failures wrap
// persist.ErrPersistence.
func (c *Client) LoadTheme(ctx context.Context) (schema.ThemeConfig, uint64, error) {
	st, err := c.FetchTheme(ctx)
	if err != nil {
		return schema.ThemeConfig{}, 0, fmt.Errorf("%w: load theme: %w", persist.ErrPersistence, err)
	}
	return st.Theme, st.Revision, nil
}

// SaveTheme stores theme under revision. The server ignores a revision older
// than the one it holds. Failures wrap persist.ErrPersistence.
func (c *Client) SaveTheme(ctx context.Context, revision uint64, theme schema.ThemeConfig) error {
	body := map[string]any{"theme": theme}
	header := http.Header{RevisionHeader: []string{strconv.FormatUint(revision, 10)}}
	if err := c.do(ctx, http.MethodPost, "/api/theme", header, body, nil); err != nil {
		return fmt.Errorf("%w: save revision %d: %w", persist.ErrPersistence, revision, err)
	}
	return nil
}

// PublicTheme fetches the theme a widget would render for siteKey
func (c *Client) PublicTheme(ctx context.Context, siteKey string) (schema.ThemeConfig, error) {
	var resp struct {
		Theme json.RawMessage `json:"theme"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/theme/"+url.PathEscape(siteKey), nil, nil, &resp); err != nil {
		return schema.ThemeConfig{}, err
	}
	return schema.Decode(resp.Theme)
}

// Analytics reports the submission count and latest submission time of siteKey
func (c *Client) Analytics(ctx context.Context, siteKey string) (services.Analytics, error) {
	var out services.Analytics
	path := "/api/analytics?siteKey=" + url.QueryEscape(siteKey)
	err := c.do(ctx, http.MethodGet, path, nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
