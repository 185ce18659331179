// Package audiobookshelf fetches the athlete's listening sessions from an
// Audiobookshelf server.
package audiobookshelf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	shared "github.com/drahdiwaberl/streaktag/pkg"
	"github.com/drahdiwaberl/streaktag/pkg/domain/enrichment"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/httputil"
)

// Client talks to a single Audiobookshelf instance with a static API token.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

var _ shared.ListeningSessionSource = (*Client)(nil)

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    http.DefaultClient,
	}
}

type apiSession struct {
	ID        string `json:"id"`
	StartedAt int64  `json:"startedAt"` // unix millis
	UpdatedAt int64  `json:"updatedAt"` // unix millis; 0 when never updated
	MediaType string `json:"mediaType"`
	Metadata  struct {
		Title string `json:"title"`
		// Authors may be structured objects or plain strings depending on
		// the media type; decoded leniently below.
		Authors []json.RawMessage `json:"authors"`
	} `json:"mediaMetadata"`
}

// FetchSessions returns the sessions in server order. A session with no
// update timestamp is treated as ending the instant it started.
func (c *Client) FetchSessions(ctx context.Context) ([]enrichment.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/me/listening-sessions", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audiobookshelf request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(resp); err != nil {
		return nil, err
	}

	var payload struct {
		Sessions []apiSession `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	out := make([]enrichment.Session, 0, len(payload.Sessions))
	for _, s := range payload.Sessions {
		start := time.UnixMilli(s.StartedAt).UTC()
		end := start
		if s.UpdatedAt > 0 {
			end = time.UnixMilli(s.UpdatedAt).UTC()
		}
		mediaType := s.MediaType
		if mediaType == "" {
			mediaType = "Media"
		}
		out = append(out, enrichment.Session{
			ID:         s.ID,
			StartedAt:  start,
			EndedAt:    end,
			MediaTitle: s.Metadata.Title,
			MediaType:  mediaType,
			Authors:    decodeAuthors(s.Metadata.Authors),
		})
	}
	return out, nil
}

// decodeAuthors normalizes author entries: either {"name": "..."} objects or
// bare strings. Unrecognized shapes are dropped.
func decodeAuthors(raw []json.RawMessage) []string {
	var names []string
	for _, r := range raw {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(r, &obj); err == nil && obj.Name != "" {
			names = append(names, obj.Name)
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err == nil && s != "" {
			names = append(names, s)
		}
	}
	return names
}
