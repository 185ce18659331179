package streak

import (
	"context"
	"log/slog"

	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
	"github.com/drahdiwaberl/streaktag/pkg/domain/countertag"
)

// RunRule continues a daily run/nordic-ski streak: the counter increments
// when the most recent tagged foot/ski activity is exactly one local
// calendar day earlier. Each activity's date is resolved in its own
// timezone.
type RunRule struct {
	Logger *slog.Logger
}

func (r *RunRule) Applies(t activity.Type) bool {
	return t == activity.TypeRun || t == activity.TypeNordicSki
}

func (r *RunRule) Compute(_ context.Context, act *activity.Activity, history []activity.Activity) (int, bool) {
	currentDate := act.LocalDate()

	for i := range history {
		prev := &history[i]
		if prev.ID == act.ID {
			continue
		}
		if prev.Type != activity.TypeRun && prev.Type != activity.TypeNordicSki {
			continue
		}

		counter, ok := countertag.Extract(prev.Name)
		if !ok {
			continue
		}

		daysDiff := activity.DaysBetween(currentDate, prev.LocalDate())
		switch {
		case daysDiff == 1:
			return counter + 1, true
		case daysDiff == 0:
			r.log().Info("already logged a run today, not tagging", "activity_id", act.ID)
			return 0, false
		default:
			// Streak broken. No counter is assigned; there is deliberately
			// no restart-at-1 here.
			r.log().Info("run streak broken", "activity_id", act.ID, "days_since_last", daysDiff)
			return 0, false
		}
	}

	// No tagged run/ski anywhere in the window: nothing to continue from.
	return 0, false
}

func (r *RunRule) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
