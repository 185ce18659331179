package segmentlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/httputil"
)

// Notifier posts effort-count deltas to a webhook. Negative deltas (segment
// history rewritten upstream) are not forwarded.
type Notifier struct {
	URL  string
	HTTP *http.Client
}

func NewNotifier(url string) *Notifier {
	return &Notifier{URL: url, HTTP: http.DefaultClient}
}

// Notify posts the delta for a segment. A nil receiver or empty URL is a
// no-op so callers can wire it unconditionally.
func (n *Notifier) Notify(ctx context.Context, segmentID, delta int64) error {
	if n == nil || n.URL == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]int64{
		"effort_diff": delta,
		"segment_id":  segmentID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	return httputil.CheckResponse(resp)
}
