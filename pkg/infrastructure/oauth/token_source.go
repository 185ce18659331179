// Package oauth handles the Strava token lifecycle: an in-memory token pair,
// transparent refresh via the OAuth2 refresh grant, and a reactive retry on
// 401 responses. Refreshed pairs live only for the life of the process;
// nothing is ever written back to the credential store.
package oauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Endpoint is the Strava OAuth2 endpoint. Strava expects client credentials
// in the request body.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/api/v3/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// NewConfig builds the Strava OAuth2 config.
func NewConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     Endpoint,
	}
}

// TokenPair is an immutable access/refresh token pair. A refresh yields a
// new pair rather than mutating the old one.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// TokenSource returns a valid token pair.
// It is safe for concurrent use by multiple goroutines.
type TokenSource interface {
	Token(ctx context.Context) (TokenPair, error)
	ForceRefresh(ctx context.Context) (TokenPair, error)
}

// MemoryTokenSource keeps the current pair in memory, refreshing proactively
// when the expiry is known and near.
type MemoryTokenSource struct {
	cfg *oauth2.Config

	mu      sync.Mutex
	current TokenPair
}

func NewMemoryTokenSource(cfg *oauth2.Config, accessToken, refreshToken string) *MemoryTokenSource {
	return &MemoryTokenSource{
		cfg: cfg,
		current: TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}
}

// Token returns the current pair, refreshing it first if it is expired or
// expiring within the next minute. Tokens loaded from the environment have
// no known expiry and are used as-is until a 401 forces a refresh.
func (s *MemoryTokenSource) Token(ctx context.Context) (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.AccessToken == "" && s.current.RefreshToken == "" {
		return TokenPair{}, fmt.Errorf("oauth: no token configured")
	}

	if !s.current.Expiry.IsZero() && time.Now().Add(time.Minute).After(s.current.Expiry) {
		return s.refreshLocked(ctx)
	}
	return s.current, nil
}

// ForceRefresh exchanges the refresh token regardless of expiry.
func (s *MemoryTokenSource) ForceRefresh(ctx context.Context) (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *MemoryTokenSource) refreshLocked(ctx context.Context) (TokenPair, error) {
	if s.current.RefreshToken == "" {
		return TokenPair{}, fmt.Errorf("oauth: missing refresh token")
	}

	// Feed oauth2 an already-expired token so its TokenSource performs the
	// refresh grant immediately.
	stale := &oauth2.Token{
		AccessToken:  s.current.AccessToken,
		RefreshToken: s.current.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}
	fresh, err := s.cfg.TokenSource(ctx, stale).Token()
	if err != nil {
		return TokenPair{}, fmt.Errorf("oauth: refresh failed: %w", err)
	}

	pair := TokenPair{
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		Expiry:       fresh.Expiry,
	}
	// Some providers omit the refresh token when it has not rotated.
	if pair.RefreshToken == "" {
		pair.RefreshToken = s.current.RefreshToken
	}
	s.current = pair
	return pair, nil
}
