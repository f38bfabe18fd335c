package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/calendar/v3"

	"personal-assistant/pkg/log"
)

// ErrAuthorizationRequired indicates there is no usable credential and the
// user must complete (or redo) the interactive authorization flow.
var ErrAuthorizationRequired = errors.New("credentials: authorization required")

// RefreshMargin is how long before expiry a token is refreshed.
const RefreshMargin = 2 * time.Minute

// Manager owns the OAuth2 authorization-code flow and token refresh for
// provider-backed adapters. Safe for concurrent use; concurrent fetches
// during an in-flight refresh share one refresh call.
type Manager struct {
	oauth *oauth2.Config
	store *FileStore
	l     log.Logger

	mu        sync.RWMutex
	token     *oauth2.Token
	needsAuth bool

	sf singleflight.Group
}

// NewManagerFromCredentialsFile builds a Manager from an OAuth client secret
// JSON file (Desktop app credentials) and a token storage path. The persisted
// token, if any, is loaded immediately.
func NewManagerFromCredentialsFile(credentialsPath, tokenPath string, l log.Logger) (*Manager, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("credentials: failed to read client secret file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(data, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("credentials: failed to parse client secret file: %w", err)
	}

	return NewManager(oauthCfg, NewFileStore(tokenPath), l)
}

// NewManager builds a Manager from an explicit OAuth config and store.
// Tests inject a config pointing at a fake token endpoint.
func NewManager(oauthCfg *oauth2.Config, store *FileStore, l log.Logger) (*Manager, error) {
	m := &Manager{
		oauth: oauthCfg,
		store: store,
		l:     l,
	}

	tok, err := store.Load()
	if err != nil {
		return nil, err
	}
	m.token = tok
	if tok == nil {
		m.needsAuth = true
	}

	return m, nil
}

// AuthURL returns the URL the user must visit to authorize access.
func (m *Manager) AuthURL(state string) string {
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange completes the authorization-code flow, persisting the new token.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	tok, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("credentials: failed to exchange authorization code: %w", err)
	}

	m.mu.Lock()
	m.token = tok
	m.needsAuth = false
	m.mu.Unlock()

	if err := m.store.Save(tok); err != nil {
		return err
	}

	m.l.Infof(ctx, "credentials: authorization completed, token valid until %s", tok.Expiry.Format(time.RFC3339))
	return nil
}

// Token returns a valid access token, refreshing it first if it expires
// within RefreshMargin. Fails fast with ErrAuthorizationRequired when no
// credential exists or the refresh token has been revoked.
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	m.mu.RLock()
	tok := m.token
	needsAuth := m.needsAuth
	m.mu.RUnlock()

	if needsAuth || tok == nil {
		return nil, ErrAuthorizationRequired
	}

	if tok.Expiry.IsZero() || time.Until(tok.Expiry) > RefreshMargin {
		return tok, nil
	}

	return m.refresh(ctx, tok)
}

// refresh performs a single-flight token refresh. Every concurrent caller
// shares the one outbound refresh call and its result.
func (m *Manager) refresh(ctx context.Context, stale *oauth2.Token) (*oauth2.Token, error) {
	result, err, _ := m.sf.Do("refresh", func() (interface{}, error) {
		// Another caller may have finished a refresh while we waited.
		m.mu.RLock()
		current := m.token
		m.mu.RUnlock()
		if current != nil && current != stale && time.Until(current.Expiry) > RefreshMargin {
			return current, nil
		}

		if current == nil || current.RefreshToken == "" {
			m.mu.Lock()
			m.needsAuth = true
			m.mu.Unlock()
			return nil, ErrAuthorizationRequired
		}

		// Seed the source with the refresh token only. A seed that still
		// looks valid makes oauth2's reuse source hand the stale token
		// back without ever contacting the provider.
		seed := &oauth2.Token{RefreshToken: current.RefreshToken}
		fresh, refreshErr := m.oauth.TokenSource(ctx, seed).Token()
		if refreshErr != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(refreshErr, &retrieveErr) {
				// Revoked or expired refresh token: downgrade so future
				// fetches fail fast instead of retrying indefinitely.
				m.mu.Lock()
				m.needsAuth = true
				m.mu.Unlock()
				m.l.Warnf(ctx, "credentials: refresh rejected by provider, re-authorization required")
				return nil, ErrAuthorizationRequired
			}
			return nil, fmt.Errorf("credentials: failed to refresh token: %w", refreshErr)
		}

		m.mu.Lock()
		m.token = fresh
		m.mu.Unlock()

		if saveErr := m.store.Save(fresh); saveErr != nil {
			m.l.Errorf(ctx, "credentials: failed to persist refreshed token: %v", saveErr)
		}

		m.l.Debugf(ctx, "credentials: token refreshed, valid until %s", fresh.Expiry.Format(time.RFC3339))
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*oauth2.Token), nil
}

// RequiresAuthorization reports whether the interactive flow must be (re)run.
func (m *Manager) RequiresAuthorization() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.needsAuth || m.token == nil
}

// TokenSource adapts the manager to oauth2.TokenSource for API clients.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, m: m}
}

type managerTokenSource struct {
	ctx context.Context
	m   *Manager
}

func (ts *managerTokenSource) Token() (*oauth2.Token, error) {
	return ts.m.Token(ts.ctx)
}
