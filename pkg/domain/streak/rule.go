// Package streak computes streak counters for newly completed activities.
// Two rule variants exist: a daily-continuity rule for runs and nordic ski,
// and a weekly segment-based catch-up rule for rides. A single Rule interface
// replaces the generations of near-duplicate scripts that preceded it.
package streak

import (
	"context"

	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
)

// Rule decides whether an activity extends a streak and with what counter.
//
// Compute receives the activity's history page in most-recent-first order.
// The activity itself may appear in the page and is skipped by id. A false
// second return value means no counter is assigned; rules never error, any
// upstream failure on the way in degrades to "no counter" at the caller.
type Rule interface {
	Applies(t activity.Type) bool
	Compute(ctx context.Context, act *activity.Activity, history []activity.Activity) (int, bool)
}
