// Package enrichment matches an activity's time window against concurrent
// audio-listening activity: Audiobookshelf sessions first, Last.fm scrobbles
// as the fallback.
package enrichment

import (
	"context"
	"fmt"
	"time"
)

// Session is one listening session from the media server. EndedAt is never
// before StartedAt; sources substitute StartedAt when no end is reported.
type Session struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time
	MediaTitle string
	MediaType  string
	Authors    []string
}

// Scrobble is a single Last.fm play record.
type Scrobble struct {
	Artist     string
	Track      string
	When       time.Time
	NowPlaying bool
}

// ScrobbleSource fetches scrobbles whose server-reported timestamp lies in
// [from, to]. Items may arrive in reverse-chronological order; the matcher
// normalizes.
type ScrobbleSource interface {
	FetchScrobbles(ctx context.Context, from, to time.Time) ([]Scrobble, error)
}

// Window is the activity's time span, [Start, Start+elapsed].
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports closed-interval overlap: sessions touching the window at
// either boundary count.
func (w Window) Overlaps(start, end time.Time) bool {
	return !end.Before(w.Start) && !start.After(w.End)
}

// MatchSession returns the first session in the source's original order that
// overlaps the window. The result is order-dependent when the upstream
// returns sessions unsorted; that nondeterminism is accepted.
func MatchSession(w Window, sessions []Session) (Session, bool) {
	for _, s := range sessions {
		if w.Overlaps(s.StartedAt, s.EndedAt) {
			return s, true
		}
	}
	return Session{}, false
}

// MatchScrobbles fetches the window's scrobbles and returns them as
// "artist - track" lines in chronological order, now-playing placeholders
// dropped, deduplicated preserving first occurrence.
func MatchScrobbles(ctx context.Context, w Window, src ScrobbleSource) ([]string, error) {
	scrobbles, err := src.FetchScrobbles(ctx, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	// The API serves newest-first; reverse into played order.
	var lines []string
	for i := len(scrobbles) - 1; i >= 0; i-- {
		s := scrobbles[i]
		if s.NowPlaying {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s - %s", s.Artist, s.Track))
	}

	seen := make(map[string]bool, len(lines))
	unique := lines[:0]
	for _, line := range lines {
		if seen[line] {
			continue
		}
		seen[line] = true
		unique = append(unique, line)
	}
	return unique, nil
}
