// Package lastfm fetches scrobbles from the Last.fm (Audioscrobbler) API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	shared "github.com/drahdiwaberl/streaktag/pkg"
	"github.com/drahdiwaberl/streaktag/pkg/domain/enrichment"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/httputil"
)

// DefaultBaseURL is the Audioscrobbler 2.0 API root.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

const pageLimit = 200

// Client queries a single user's recent tracks.
type Client struct {
	BaseURL string
	APIKey  string
	User    string
	HTTP    *http.Client
}

var _ shared.ScrobbleSource = (*Client)(nil)

func NewClient(apiKey, user string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		User:    user,
		HTTP:    http.DefaultClient,
	}
}

type apiTrack struct {
	Name   string `json:"name"`
	Artist struct {
		Text string `json:"#text"`
	} `json:"artist"`
	Date struct {
		UTS string `json:"uts"`
	} `json:"date"`
	Attr struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

// FetchScrobbles returns the user's scrobbles in [from, to], in the order
// the API serves them (newest first). The caller normalizes ordering.
func (c *Client) FetchScrobbles(ctx context.Context, from, to time.Time) ([]enrichment.Scrobble, error) {
	params := url.Values{
		"method":  {"user.getRecentTracks"},
		"user":    {c.User},
		"api_key": {c.APIKey},
		"from":    {strconv.FormatInt(from.Unix(), 10)},
		"to":      {strconv.FormatInt(to.Unix(), 10)},
		"format":  {"json"},
		"limit":   {strconv.Itoa(pageLimit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("last.fm request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(resp); err != nil {
		return nil, err
	}

	var payload struct {
		RecentTracks struct {
			Track json.RawMessage `json:"track"`
		} `json:"recenttracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode last.fm response: %w", err)
	}
	if len(payload.RecentTracks.Track) == 0 {
		return nil, nil
	}

	tracks, err := decodeTracks(payload.RecentTracks.Track)
	if err != nil {
		return nil, err
	}

	out := make([]enrichment.Scrobble, 0, len(tracks))
	for _, t := range tracks {
		artist := t.Artist.Text
		if artist == "" {
			artist = "Unknown Artist"
		}
		name := t.Name
		if name == "" {
			name = "Unknown Track"
		}
		var when time.Time
		if uts, err := strconv.ParseInt(t.Date.UTS, 10, 64); err == nil {
			when = time.Unix(uts, 0).UTC()
		}
		out = append(out, enrichment.Scrobble{
			Artist:     artist,
			Track:      name,
			When:       when,
			NowPlaying: t.Attr.NowPlaying == "true",
		})
	}
	return out, nil
}

// decodeTracks handles the API quirk where a single result is serialized as
// an object instead of a one-element array.
func decodeTracks(raw json.RawMessage) ([]apiTrack, error) {
	var list []apiTrack
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single apiTrack
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode last.fm tracks: %w", err)
	}
	return []apiTrack{single}, nil
}
