// Package msgraph imports Outlook calendar absences through Microsoft Graph
// and files them as attendance requests.
package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// OAuthConfig returns the device-flow configuration for the tenant and
// client.
func OAuthConfig(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// TokenStore persists the Graph token as JSON.
type TokenStore struct {
	Path string
}

// DefaultTokenStore stores tokens in ~/.tat/auth/msgraph_tokens.json.
func DefaultTokenStore() (TokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return TokenStore{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return TokenStore{Path: filepath.Join(home, ".tat", "auth", "msgraph_tokens.json")}, nil
}

// Load returns the stored token, or nil when none was saved.
func (s TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", s.Path, err)
	}
	return &tok, nil
}

// Save writes tok atomically with owner-only permissions.
func (s TokenStore) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticate returns a usable token: the stored one if still valid, a
// refreshed one, or a new one from the device code flow. Sign-in
// instructions are written to prompt.
func Authenticate(ctx context.Context, cfg *oauth2.Config, store TokenStore, prompt io.Writer, log zerolog.Logger) (*oauth2.Token, error) {
	tok, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("ignoring stored token")
		tok = nil
	}
	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := store.Save(refreshed); err != nil {
				log.Warn().Err(err).Msg("could not save refreshed token")
			}
			return refreshed, nil
		}
		log.Info().Err(err).Msg("token refresh failed, re-authenticating")
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}
	fmt.Fprintf(prompt, "\nTo sign in, use a web browser to open the page:\n  %s\nEnter the code: %s\n\n",
		resp.VerificationURI, resp.UserCode)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := store.Save(newTok); err != nil {
		log.Warn().Err(err).Msg("could not save token")
	}
	return newTok, nil
}
