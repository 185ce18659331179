package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{BaseURL: srv.URL, APIKey: "key", User: "tester", HTTP: srv.Client()}
}

func TestFetchScrobbles(t *testing.T) {
	from := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "user.getRecentTracks", q.Get("method"))
		assert.Equal(t, "tester", q.Get("user"))
		assert.Equal(t, "key", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "200", q.Get("limit"))
		assert.Equal(t, "1770710400", q.Get("from"))
		assert.Equal(t, "1770714000", q.Get("to"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recenttracks": {"track": [
			{"name": "Current Song", "artist": {"#text": "Live Band"}, "@attr": {"nowplaying": "true"}},
			{"name": "Track X", "artist": {"#text": "Artist A"}, "date": {"uts": "1770712200"}},
			{"name": "", "artist": {"#text": ""}, "date": {"uts": "1770711000"}}
		]}}`))
	})

	got, err := c.FetchScrobbles(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].NowPlaying)
	assert.Equal(t, "Artist A", got[1].Artist)
	assert.Equal(t, "Track X", got[1].Track)
	assert.Equal(t, time.Unix(1770712200, 0).UTC(), got[1].When)
	assert.Equal(t, "Unknown Artist", got[2].Artist)
	assert.Equal(t, "Unknown Track", got[2].Track)
}

func TestFetchScrobblesSingleTrackObject(t *testing.T) {
	// With exactly one result the API serializes an object, not an array.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recenttracks": {"track":
			{"name": "Only Track", "artist": {"#text": "Solo Artist"}, "date": {"uts": "1770712200"}}
		}}`))
	})

	got, err := c.FetchScrobbles(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Solo Artist", got[0].Artist)
	assert.Equal(t, "Only Track", got[0].Track)
}

func TestFetchScrobblesEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recenttracks": {}}`))
	})

	got, err := c.FetchScrobbles(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchScrobblesServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": 29, "message": "Rate limit exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := c.FetchScrobbles(context.Background(), time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}
