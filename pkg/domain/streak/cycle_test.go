package streak

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
)

const (
	bigSegment   = int64(101)
	smallSegment = int64(202)
)

func rideAt(id int64, name string, start time.Time, big, small int) activity.Activity {
	act := activity.Activity{
		ID:        id,
		Type:      activity.TypeRide,
		Name:      name,
		StartDate: start,
		Timezone:  "UTC",
	}
	for i := 0; i < big; i++ {
		act.SegmentEfforts = append(act.SegmentEfforts, activity.SegmentEffort{SegmentID: bigSegment})
	}
	for i := 0; i < small; i++ {
		act.SegmentEfforts = append(act.SegmentEfforts, activity.SegmentEffort{SegmentID: smallSegment})
	}
	return act
}

func newCycleRule(detail DetailFunc) *CycleRule {
	return &CycleRule{
		BigSegmentID:   bigSegment,
		SmallSegmentID: smallSegment,
		FetchDetail:    detail,
	}
}

func TestCycleRuleWeekDebt(t *testing.T) {
	// Last counted ride in the week of Mon Jan 5; the current ride three
	// weeks later in the week of Mon Jan 26. weeks_diff=3, weeks_missed=2.
	lastRide := rideAt(10, "#012 Iron Chain", time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC), 1, 0)
	currentStart := time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		big, small int
		want       int
		wantOK     bool
	}{
		{name: "big loops meet raised bar", big: 3, small: 0, want: 15, wantOK: true},
		{name: "small loops meet raised bar", big: 2, small: 4, want: 15, wantOK: true},
		{name: "small loops one short", big: 2, small: 3, wantOK: false},
		{name: "below both bars", big: 2, small: 2, wantOK: false},
	}

	rule := newCycleRule(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := rideAt(20, "Sunday Loops", currentStart, tt.big, tt.small)
			got, ok := rule.Compute(context.Background(), &current, []activity.Activity{lastRide})
			if ok != tt.wantOK {
				t.Fatalf("Compute() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Compute() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCycleRuleNoSegments(t *testing.T) {
	current := rideAt(20, "Commute", time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC), 0, 0)
	history := []activity.Activity{
		rideAt(10, "#012 Iron Chain", time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC), 1, 0),
	}

	rule := newCycleRule(nil)
	if _, ok := rule.Compute(context.Background(), &current, history); ok {
		t.Error("ride without streak segments must not be counted")
	}
}

func TestCycleRuleSameWeek(t *testing.T) {
	lastRide := rideAt(10, "#012 Iron Chain", time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC), 1, 0)
	current := rideAt(20, "Second Helping", time.Date(2026, 1, 30, 9, 0, 0, 0, time.UTC), 2, 0)

	rule := newCycleRule(nil)
	if _, ok := rule.Compute(context.Background(), &current, []activity.Activity{lastRide}); ok {
		t.Error("a second ride in the same week must not be counted")
	}
}

func TestCycleRuleNoPriorStreak(t *testing.T) {
	current := rideAt(20, "Loops", time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC), 1, 0)
	history := []activity.Activity{
		rideAt(10, "Untagged Ride", time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC), 1, 0),
	}

	rule := newCycleRule(nil)
	if _, ok := rule.Compute(context.Background(), &current, history); ok {
		t.Error("without a tagged prior ride there is no streak to extend")
	}
}

func TestCycleRuleWeakLink(t *testing.T) {
	// Adjacent weeks: weeks_missed = 0. The current ride has a single small
	// loop and no big loops, so everything depends on the previous ride.
	lastRide := rideAt(10, "#012 Iron Chain", time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC), 0, 0)
	current := rideAt(20, "Light Week", time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC), 0, 1)

	tests := []struct {
		name        string
		prevEfforts []activity.SegmentEffort
		detailErr   error
		wantOK      bool
	}{
		{
			name:        "previous ride had a big loop",
			prevEfforts: []activity.SegmentEffort{{SegmentID: bigSegment}},
			wantOK:      true,
		},
		{
			name: "previous ride had two small loops",
			prevEfforts: []activity.SegmentEffort{
				{SegmentID: smallSegment}, {SegmentID: smallSegment},
			},
			wantOK: true,
		},
		{
			name:        "previous ride too light",
			prevEfforts: []activity.SegmentEffort{{SegmentID: smallSegment}},
			wantOK:      false,
		},
		{
			name:      "detail fetch failure denies amnesty",
			detailErr: errors.New("upstream unavailable"),
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := newCycleRule(func(ctx context.Context, id int64) ([]activity.SegmentEffort, error) {
				if id != lastRide.ID {
					t.Errorf("detail fetch for activity %d, want %d", id, lastRide.ID)
				}
				return tt.prevEfforts, tt.detailErr
			})

			got, ok := rule.Compute(context.Background(), &current, []activity.Activity{lastRide})
			if ok != tt.wantOK {
				t.Fatalf("Compute() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != 13 {
				t.Errorf("Compute() = %d, want 13", got)
			}
		})
	}
}

func TestCycleRuleAppliesOnlyToRides(t *testing.T) {
	rule := newCycleRule(nil)
	if !rule.Applies(activity.TypeRide) {
		t.Error("CycleRule should apply to rides")
	}
	if rule.Applies(activity.TypeRun) {
		t.Error("CycleRule should not apply to runs")
	}
}
