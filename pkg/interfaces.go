// Package shared defines the collaborator contracts the decision engine
// consumes. Concrete clients live under pkg/infrastructure; the engine only
// ever sees these interfaces.
package shared

import (
	"context"
	"errors"
	"time"

	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
	"github.com/drahdiwaberl/streaktag/pkg/domain/enrichment"
)

// ErrNotFound is returned when an activity id is unknown upstream.
var ErrNotFound = errors.New("not found")

// ActivitySource fetches activities from the remote service.
//
// Ordering is part of the contract and differs per call: FetchPage returns
// newest-first (the traversal order the streak rules assume), FetchRecent
// returns oldest-first as the upstream serves after-filtered listings.
type ActivitySource interface {
	// FetchByID returns the full activity including segment efforts, or
	// ErrNotFound.
	FetchByID(ctx context.Context, id int64) (*activity.Activity, error)

	// FetchPage returns the athlete's most recent activities, newest first.
	FetchPage(ctx context.Context, perPage int) ([]activity.Activity, error)

	// FetchRecent returns activities started after the given instant,
	// oldest first.
	FetchRecent(ctx context.Context, after time.Time, perPage int) ([]activity.Activity, error)
}

// SegmentDetailSource fetches the full segment-effort list of an activity.
type SegmentDetailSource interface {
	FetchEfforts(ctx context.Context, activityID int64) ([]activity.SegmentEffort, error)
}

// ListeningSessionSource fetches the athlete's listening sessions, in
// whatever order the media server returns them.
type ListeningSessionSource interface {
	FetchSessions(ctx context.Context) ([]enrichment.Session, error)
}

// ScrobbleSource is re-exported here so callers wiring collaborators only
// import one package.
type ScrobbleSource = enrichment.ScrobbleSource

// Renamer applies a new name and description to an activity. This is the
// single write in the whole pipeline; it is fire-and-forget from the
// engine's point of view.
type Renamer interface {
	Apply(ctx context.Context, activityID int64, name, description string) error
}

// SegmentStats is a point-in-time snapshot of a segment's public counters.
type SegmentStats struct {
	SegmentID    int64
	EffortCount  int64
	AthleteCount int64
}

// SegmentStatsSource fetches public segment counters for the effort log.
type SegmentStatsSource interface {
	FetchSegmentStats(ctx context.Context, segmentID int64) (*SegmentStats, error)
}
