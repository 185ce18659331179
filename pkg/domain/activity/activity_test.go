package activity

import (
	"testing"
	"time"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{"Run", TypeRun},
		{"run", TypeRun},
		{"NordicSki", TypeNordicSki},
		{"Ride", TypeRide},
		{"Swim", TypeOther},
		{"", TypeOther},
	}
	for _, tt := range tests {
		if got := ParseType(tt.input); got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLocation(t *testing.T) {
	act := &Activity{Timezone: "(GMT+01:00) Europe/Vienna"}
	if got := act.Location().String(); got != "Europe/Vienna" {
		t.Errorf("Location() = %q, want Europe/Vienna", got)
	}

	for _, tz := range []string{"", "(GMT+XX) Not/AZone"} {
		act := &Activity{Timezone: tz}
		if got := act.Location(); got != time.UTC {
			t.Errorf("Location() with timezone %q = %v, want UTC", tz, got)
		}
	}
}

func TestLocalDate(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in Vienna.
	act := &Activity{
		StartDate: time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC),
		Timezone:  "(GMT+01:00) Europe/Vienna",
	}
	want := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := act.LocalDate(); !got.Equal(want) {
		t.Errorf("LocalDate() = %v, want %v", got, want)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{
			name:  "wednesday maps to monday",
			start: time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "monday maps to itself",
			start: time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "sunday maps to previous monday",
			start: time.Date(2026, 1, 11, 23, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := &Activity{StartDate: tt.start, Timezone: "UTC"}
			if got := act.WeekStart(); !got.Equal(tt.want) {
				t.Errorf("WeekStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEndAndCountEfforts(t *testing.T) {
	act := &Activity{
		StartDate:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ElapsedSec: 3600,
		SegmentEfforts: []SegmentEffort{
			{SegmentID: 1}, {SegmentID: 2}, {SegmentID: 1},
		},
	}
	if got := act.End(); !got.Equal(time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("End() = %v", got)
	}
	if got := act.CountEfforts(1); got != 2 {
		t.Errorf("CountEfforts(1) = %d, want 2", got)
	}
	if got := act.CountEfforts(99); got != 0 {
		t.Errorf("CountEfforts(99) = %d, want 0", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("DaysBetween = %d, want 2", got)
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Errorf("DaysBetween reversed = %d, want -2", got)
	}
}
