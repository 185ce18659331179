package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenSource struct {
	pair         TokenPair
	refreshed    TokenPair
	refreshCalls int
}

func (f *fakeTokenSource) Token(ctx context.Context) (TokenPair, error) {
	return f.pair, nil
}

func (f *fakeTokenSource) ForceRefresh(ctx context.Context) (TokenPair, error) {
	f.refreshCalls++
	f.pair = f.refreshed
	return f.pair, nil
}

func TestTransportSetsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	source := &fakeTokenSource{pair: TokenPair{AccessToken: "valid-token"}}
	client := NewClient(source)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, source.refreshCalls)
}

func TestTransportRetriesOn401(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	source := &fakeTokenSource{
		pair:      TokenPair{AccessToken: "stale-token"},
		refreshed: TokenPair{AccessToken: "fresh-token"},
	}
	client := NewClient(source)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, source.refreshCalls)
	assert.Equal(t, 2, calls)
}

func TestTransportDoesNotMutateRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(&fakeTokenSource{pair: TokenPair{AccessToken: "t"}})

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get("Authorization"), "original request header must stay untouched")
}

func TestMemoryTokenSourceProactiveRefresh(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"refresh_token": r.PostForm.Get("refresh_token"),
			"client_id":     r.PostForm.Get("client_id"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "fresh", "refresh_token": "rotated", "expires_in": 21600, "token_type": "Bearer"}`))
	}))
	defer srv.Close()

	cfg := NewConfig("client-id", "client-secret")
	cfg.Endpoint.TokenURL = srv.URL

	source := NewMemoryTokenSource(cfg, "stale", "refresh-me")
	// Force the proactive path: a known expiry in the past.
	source.current.Expiry = time.Now().Add(-time.Hour)

	pair, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", pair.AccessToken)
	assert.Equal(t, "rotated", pair.RefreshToken)
	assert.Equal(t, "refresh_token", form["grant_type"])
	assert.Equal(t, "refresh-me", form["refresh_token"])
	assert.Equal(t, "client-id", form["client_id"])
}

func TestMemoryTokenSourceKeepsRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No rotated refresh token in the response.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "fresh", "expires_in": 21600, "token_type": "Bearer"}`))
	}))
	defer srv.Close()

	cfg := NewConfig("client-id", "client-secret")
	cfg.Endpoint.TokenURL = srv.URL

	source := NewMemoryTokenSource(cfg, "stale", "keep-me")
	pair, err := source.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", pair.AccessToken)
	assert.Equal(t, "keep-me", pair.RefreshToken)
}

func TestMemoryTokenSourceUnconfigured(t *testing.T) {
	source := NewMemoryTokenSource(NewConfig("id", "secret"), "", "")
	_, err := source.Token(context.Background())
	assert.Error(t, err)
}
