// Package activity holds the domain model for Strava activities as this tool
// sees them: enough identity, timing and segment data to drive the streak rules
// and the audio enrichment, nothing more.
package activity

import (
	"strings"
	"time"
)

// Type is the normalized activity type. Strava reports mixed-case strings
// ("Run", "NordicSki"); we compare lowercase throughout.
type Type string

const (
	TypeRun       Type = "run"
	TypeNordicSki Type = "nordicski"
	TypeRide      Type = "ride"
	TypeOther     Type = "other"
)

// ParseType normalizes a Strava activity type string. Anything outside the
// three streak-relevant types collapses to TypeOther.
func ParseType(s string) Type {
	switch Type(strings.ToLower(s)) {
	case TypeRun:
		return TypeRun
	case TypeNordicSki:
		return TypeNordicSki
	case TypeRide:
		return TypeRide
	default:
		return TypeOther
	}
}

// SegmentEffort is a single pass over a segment within an activity.
// Detail fetches return one entry per pass, in ride order.
type SegmentEffort struct {
	SegmentID int64
}

// Activity is a single Strava activity. Summary fetches leave SegmentEfforts
// empty; only the per-activity detail endpoint includes them.
type Activity struct {
	ID              int64
	Type            Type
	Name            string
	Description     string
	StartDate       time.Time // always UTC
	ElapsedSec      int64
	Timezone        string // Strava format: "(GMT+01:00) Europe/Vienna"
	SegmentEfforts  []SegmentEffort
	SummaryPolyline string
}

// Location resolves the activity's own IANA timezone. Strava prefixes the
// zone name with a GMT offset; the zone name is the last space-separated
// token. Unparseable zones fall back to UTC.
func (a *Activity) Location() *time.Location {
	parts := strings.Fields(a.Timezone)
	if len(parts) == 0 {
		return time.UTC
	}
	loc, err := time.LoadLocation(parts[len(parts)-1])
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalDate returns midnight of the activity's start date in its own
// timezone, re-anchored to UTC so dates from different zones subtract
// cleanly.
func (a *Activity) LocalDate() time.Time {
	y, m, d := a.StartDate.In(a.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the ISO week containing the activity's
// local start date, as a UTC-anchored date.
func (a *Activity) WeekStart() time.Time {
	date := a.LocalDate()
	// time.Weekday has Sunday=0; shift so Monday=0.
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

// End returns the instant the activity finished.
func (a *Activity) End() time.Time {
	return a.StartDate.Add(time.Duration(a.ElapsedSec) * time.Second)
}

// CountEfforts returns how many passes the activity recorded over the given
// segment.
func (a *Activity) CountEfforts(segmentID int64) int {
	n := 0
	for _, e := range a.SegmentEfforts {
		if e.SegmentID == segmentID {
			n++
		}
	}
	return n
}

// DaysBetween returns the whole calendar days from b to a (a - b), where both
// are date-anchored values as returned by LocalDate.
func DaysBetween(a, b time.Time) int {
	return int(a.Sub(b).Hours() / 24)
}
