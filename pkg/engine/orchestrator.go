// Package engine routes a newly completed activity through the streak rules
// and the audio enrichment matcher, producing the final name and description.
// The engine itself performs no writes; the caller hands the decision to the
// Renamer.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	shared "github.com/drahdiwaberl/streaktag/pkg"
	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
	"github.com/drahdiwaberl/streaktag/pkg/domain/countertag"
	"github.com/drahdiwaberl/streaktag/pkg/domain/enrichment"
	"github.com/drahdiwaberl/streaktag/pkg/domain/streak"
)

// Title markers. An activity title carries at most one of them.
const (
	SessionMarker  = "🎧📖"
	ScrobbleMarker = "🎧🤘🎵"
)

const defaultHistorySize = 100

// Decision is the outcome for one activity. Name and Description equal the
// originals when no update applies.
type Decision struct {
	Name        string
	Description string

	Counter    int
	CounterSet bool

	// Enriched is "" (nothing matched), "session" or "scrobbles".
	Enriched string
}

// Changed reports whether applying the decision would modify the activity.
func (d Decision) Changed(act *activity.Activity) bool {
	return d.Name != act.Name || d.Description != act.Description
}

// Orchestrator wires the collaborators together. Every upstream failure
// inside Decide degrades to "leave the activity unchanged"; a failed run
// must never produce a false rename or a duplicate tag.
type Orchestrator struct {
	Activities shared.ActivitySource
	Sessions   shared.ListeningSessionSource
	Scrobbles  shared.ScrobbleSource
	Rules      []streak.Rule

	// HistorySize is the page size for rule history fetches. Large enough
	// to look past runs of the other activity family.
	HistorySize int

	// ScrobbleProfileURL is appended under the track list when set.
	ScrobbleProfileURL string

	Logger *slog.Logger
}

// Decide computes the new name and description for one activity. The streak
// decision and the enrichment decision are independent; either, both or
// neither may apply.
func (o *Orchestrator) Decide(ctx context.Context, act *activity.Activity) Decision {
	d := Decision{Name: act.Name, Description: act.Description}

	d = o.decideStreak(ctx, act, d)
	d = o.decideEnrichment(ctx, act, d)
	return d
}

func (o *Orchestrator) decideStreak(ctx context.Context, act *activity.Activity, d Decision) Decision {
	// Idempotency gate: a previously tagged activity is never re-evaluated.
	if countertag.HasTag(act.Name) {
		o.log().Info("activity already has a streak counter", "activity_id", act.ID)
		return d
	}

	var rule streak.Rule
	for _, r := range o.Rules {
		if r.Applies(act.Type) {
			rule = r
			break
		}
	}
	if rule == nil {
		return d
	}

	size := o.HistorySize
	if size <= 0 {
		size = defaultHistorySize
	}
	history, err := o.Activities.FetchPage(ctx, size)
	if err != nil {
		o.log().Warn("history fetch failed, not tagging", "activity_id", act.ID, "error", err)
		return d
	}

	counter, ok := rule.Compute(ctx, act, history)
	if !ok {
		return d
	}

	d.Counter = counter
	d.CounterSet = true
	d.Name = countertag.Apply(act.Name, counter)
	o.log().Info("assigned streak counter", "activity_id", act.ID, "counter", counter, "new_name", d.Name)
	return d
}

func (o *Orchestrator) decideEnrichment(ctx context.Context, act *activity.Activity, d Decision) Decision {
	window := enrichment.Window{Start: act.StartDate, End: act.End()}

	if o.Sessions != nil {
		sessions, err := o.Sessions.FetchSessions(ctx)
		if err != nil {
			o.log().Warn("listening session fetch failed", "activity_id", act.ID, "error", err)
		} else if s, ok := enrichment.MatchSession(window, sessions); ok {
			d.Description = appendSessionLine(d.Description, s)
			d.Name = markTitle(d.Name, SessionMarker)
			d.Enriched = "session"
			o.log().Info("matched listening session", "activity_id", act.ID, "media_title", s.MediaTitle)
			return d
		}
	}

	if o.Scrobbles == nil {
		return d
	}
	tracks, err := enrichment.MatchScrobbles(ctx, window, o.Scrobbles)
	if err != nil {
		o.log().Warn("scrobble fetch failed", "activity_id", act.ID, "error", err)
		return d
	}
	if len(tracks) == 0 {
		return d
	}

	d.Description = appendTrackList(d.Description, tracks, o.ScrobbleProfileURL)
	d.Name = markTitle(d.Name, ScrobbleMarker)
	d.Enriched = "scrobbles"
	o.log().Info("matched scrobbles", "activity_id", act.ID, "track_count", len(tracks))
	return d
}

// appendSessionLine appends the "Listening to" line below any existing
// description. Author entries arrive already normalized to text; empty ones
// are filtered before joining.
func appendSessionLine(description string, s enrichment.Session) string {
	line := fmt.Sprintf("Listening to %s: %s", s.MediaType, s.MediaTitle)

	var names []string
	for _, a := range s.Authors {
		if a != "" {
			names = append(names, a)
		}
	}
	if len(names) > 0 {
		line += fmt.Sprintf(" [by: %s]", strings.Join(names, ", "))
	}

	if description == "" {
		return line
	}
	return description + "\n" + line
}

func appendTrackList(description string, tracks []string, profileURL string) string {
	var b strings.Builder
	for i, t := range tracks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(t)
	}
	if profileURL != "" {
		b.WriteString("\n\n")
		b.WriteString(profileURL)
	}

	if description == "" {
		return b.String()
	}
	return description + "\n\n" + b.String()
}

// markTitle appends a marker unless the title already carries either marker.
func markTitle(title, marker string) string {
	if strings.Contains(title, SessionMarker) || strings.Contains(title, ScrobbleMarker) {
		return title
	}
	return title + " " + marker
}

func (o *Orchestrator) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
