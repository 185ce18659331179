// Package strava is the HTTP client for the Strava v3 API. It implements
// the activity source, segment detail, segment stats and renamer contracts.
package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	shared "github.com/drahdiwaberl/streaktag/pkg"
	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/httputil"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://www.strava.com/api/v3"

// Client talks to the Strava API. The HTTP client is expected to carry the
// OAuth transport; token refresh happens below this layer.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *slog.Logger
}

var (
	_ shared.ActivitySource      = (*Client)(nil)
	_ shared.SegmentDetailSource = (*Client)(nil)
	_ shared.SegmentStatsSource  = (*Client)(nil)
	_ shared.Renamer             = (*Client)(nil)
)

func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    httpClient,
		Logger:  logger,
	}
}

// apiActivity is the wire shape; summary listings omit description and
// segment_efforts.
type apiActivity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	StartDate   string `json:"start_date"`
	ElapsedTime int64  `json:"elapsed_time"`
	Timezone    string `json:"timezone"`
	Description string `json:"description"`
	Map         struct {
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
	SegmentEfforts []struct {
		Segment struct {
			ID int64 `json:"id"`
		} `json:"segment"`
	} `json:"segment_efforts"`
}

func (a apiActivity) toDomain() activity.Activity {
	start, err := time.Parse(time.RFC3339, a.StartDate)
	if err != nil {
		start = time.Time{}
	}
	act := activity.Activity{
		ID:              a.ID,
		Type:            activity.ParseType(a.Type),
		Name:            a.Name,
		Description:     a.Description,
		StartDate:       start.UTC(),
		ElapsedSec:      a.ElapsedTime,
		Timezone:        a.Timezone,
		SummaryPolyline: a.Map.SummaryPolyline,
	}
	for _, e := range a.SegmentEfforts {
		act.SegmentEfforts = append(act.SegmentEfforts, activity.SegmentEffort{SegmentID: e.Segment.ID})
	}
	return act
}

// FetchByID returns the full activity, including segment efforts.
func (c *Client) FetchByID(ctx context.Context, id int64) (*activity.Activity, error) {
	var raw apiActivity
	err := c.getJSON(ctx, fmt.Sprintf("/activities/%d", id), nil, &raw)
	if err != nil {
		var httpErr *httputil.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("activity %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	act := raw.toDomain()
	return &act, nil
}

// FetchPage returns the athlete's most recent activities, newest first,
// which is the order the plain listing endpoint serves.
func (c *Client) FetchPage(ctx context.Context, perPage int) ([]activity.Activity, error) {
	return c.list(ctx, url.Values{"per_page": {strconv.Itoa(perPage)}})
}

// FetchRecent returns activities started after the given instant. The
// after-filtered listing is served oldest first.
func (c *Client) FetchRecent(ctx context.Context, after time.Time, perPage int) ([]activity.Activity, error) {
	return c.list(ctx, url.Values{
		"after":    {strconv.FormatInt(after.Unix(), 10)},
		"per_page": {strconv.Itoa(perPage)},
	})
}

func (c *Client) list(ctx context.Context, params url.Values) ([]activity.Activity, error) {
	var raw []apiActivity
	if err := c.getJSON(ctx, "/athlete/activities", params, &raw); err != nil {
		return nil, err
	}
	out := make([]activity.Activity, 0, len(raw))
	for _, a := range raw {
		out = append(out, a.toDomain())
	}
	return out, nil
}

// FetchEfforts returns the segment-effort list of an activity.
func (c *Client) FetchEfforts(ctx context.Context, activityID int64) ([]activity.SegmentEffort, error) {
	act, err := c.FetchByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return act.SegmentEfforts, nil
}

// FetchSegmentStats returns a segment's public effort and athlete counters.
func (c *Client) FetchSegmentStats(ctx context.Context, segmentID int64) (*shared.SegmentStats, error) {
	var raw struct {
		ID           int64 `json:"id"`
		EffortCount  int64 `json:"effort_count"`
		AthleteCount int64 `json:"athlete_count"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/segments/%d", segmentID), nil, &raw); err != nil {
		return nil, err
	}
	return &shared.SegmentStats{
		SegmentID:    segmentID,
		EffortCount:  raw.EffortCount,
		AthleteCount: raw.AthleteCount,
	}, nil
}

// Apply updates an activity's name and description.
func (c *Client) Apply(ctx context.Context, activityID int64, name, description string) error {
	form := url.Values{
		"name":        {name},
		"description": {description},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.BaseURL+fmt.Sprintf("/activities/%d", activityID),
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("update activity %d: %w", activityID, err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(resp); err != nil {
		return fmt.Errorf("update activity %d: %w", activityID, err)
	}
	c.log().Info("activity updated", "activity_id", activityID, "name", name)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("strava request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode strava response: %w", err)
	}
	return nil
}

func (c *Client) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
