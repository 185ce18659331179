package streak

import (
	"context"
	"log/slog"

	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
	"github.com/drahdiwaberl/streaktag/pkg/domain/countertag"
)

// DetailFunc fetches the full segment-effort list of an activity. Summary
// history pages do not include efforts, so the weak-link check needs a
// second fetch for the previous streak ride.
type DetailFunc func(ctx context.Context, activityID int64) ([]activity.SegmentEffort, error)

// CycleRule continues a weekly cycling streak anchored on two designated
// segments. Skipped weeks accumulate debt: every missed week raises the
// number of required loops. A single light week can be forgiven when the
// previous streak ride was itself substantial enough ("weak link" amnesty).
type CycleRule struct {
	BigSegmentID   int64
	SmallSegmentID int64
	FetchDetail    DetailFunc
	Logger         *slog.Logger
}

func (r *CycleRule) Applies(t activity.Type) bool {
	return t == activity.TypeRide
}

func (r *CycleRule) Compute(ctx context.Context, act *activity.Activity, history []activity.Activity) (int, bool) {
	bigLoops := act.CountEfforts(r.BigSegmentID)
	smallLoops := act.CountEfforts(r.SmallSegmentID)
	if bigLoops == 0 && smallLoops == 0 {
		r.log().Info("no streak segments in ride", "activity_id", act.ID)
		return 0, false
	}

	// Most recent tagged ride carries the running count.
	var lastRide *activity.Activity
	lastCount := 0
	for i := range history {
		prev := &history[i]
		if prev.ID == act.ID || prev.Type != activity.TypeRide {
			continue
		}
		if counter, ok := countertag.Extract(prev.Name); ok {
			lastRide = prev
			lastCount = counter
			break
		}
	}
	if lastRide == nil {
		r.log().Info("no previous cycling streak found", "activity_id", act.ID)
		return 0, false
	}

	weeksDiff := activity.DaysBetween(act.WeekStart(), lastRide.WeekStart()) / 7
	if weeksDiff == 0 {
		r.log().Info("ride already counted this week", "activity_id", act.ID)
		return 0, false
	}
	weeksMissed := weeksDiff - 1
	if weeksMissed < 0 {
		weeksMissed = 0
	}

	reqBig := weeksMissed + 1
	reqSmall := weeksMissed + 2

	success := bigLoops >= reqBig || smallLoops >= reqSmall
	if !success && weeksMissed == 0 && smallLoops == 1 && bigLoops == 0 {
		success = r.weakLinkAmnesty(ctx, lastRide.ID)
	}

	if !success {
		r.log().Info("ride below streak requirement",
			"activity_id", act.ID,
			"big_loops", bigLoops, "small_loops", smallLoops,
			"req_big", reqBig, "req_small", reqSmall,
		)
		return 0, false
	}
	return lastCount + weeksMissed + 1, true
}

// weakLinkAmnesty forgives a single small-segment loop when the previous
// streak ride had at least one big loop or two small loops of its own.
// A failed detail fetch simply denies the amnesty.
func (r *CycleRule) weakLinkAmnesty(ctx context.Context, lastRideID int64) bool {
	if r.FetchDetail == nil {
		return false
	}
	efforts, err := r.FetchDetail(ctx, lastRideID)
	if err != nil {
		r.log().Warn("could not fetch previous streak ride detail", "activity_id", lastRideID, "error", err)
		return false
	}
	prevBig, prevSmall := 0, 0
	for _, e := range efforts {
		switch e.SegmentID {
		case r.BigSegmentID:
			prevBig++
		case r.SmallSegmentID:
			prevSmall++
		}
	}
	return prevBig >= 1 || prevSmall >= 2
}

func (r *CycleRule) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
