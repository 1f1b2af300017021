// Package auth carries the bearer token an operator uses against a Formsmith
// server. Issuing tokens is outside Formsmith: the token is stored locally and
// attached to every request.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when neither a token string nor a token file is available
var ErrNoToken = errors.New("no access token configured")

// TokenFile is a cached access token on disk
type TokenFile struct {
	Path string
}

// NewTokenFile creates a token file handle
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{Path: path}
}

// Load reads the cached token
func (f *TokenFile) Load() (*oauth2.Token, error) {
	if f.Path == "" {
		return nil, ErrNoToken
	}
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("could not read token file: %w", err)
	}
	defer file.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(file).Decode(token); err != nil {
		return nil, fmt.Errorf("could not parse token file: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrNoToken
	}
	return token, nil
}

// Save writes token to the file, readable by the owner only
func (f *TokenFile) Save(token *oauth2.Token) error {
	if f.Path == "" {
		return errors.New("token path cannot be empty")
	}
	if token == nil || token.AccessToken == "" {
		return ErrNoToken
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}

	file, err := os.OpenFile(f.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not save token: %w", err)
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(token)
}

// TokenSource prefers an explicit access token and falls back to the token file
func TokenSource(accessToken string, file *TokenFile) (oauth2.TokenSource, error) {
	if accessToken = strings.TrimSpace(accessToken); accessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}), nil
	}
	if file == nil {
		return nil, ErrNoToken
	}
	token, err := file.Load()
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(token), nil
}

// NewHTTPClient returns a client that attaches the bearer token to every request
func NewHTTPClient(ctx context.Context, src oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, src)
}

// BearerToken extracts the token from an Authorization header, or "" when absent
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
