// Command streaktag tags Strava activities with streak counters and
// enriches their descriptions with concurrent audio-listening context.
//
// Modes:
//
//	streaktag                  process activities from the lookback window
//	streaktag <activity-id>    process a single activity
//	streaktag -enrich          audio-enrich the most recent activity only
//	streaktag -segment [id]    record segment effort counts and notify deltas
//	streaktag -debug-sessions  dump recent listening sessions and the last activity
//	streaktag -auth-server     serve the OAuth authorization-code callback
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/drahdiwaberl/streaktag/pkg/authserver"
	"github.com/drahdiwaberl/streaktag/pkg/bootstrap"
	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
	"github.com/drahdiwaberl/streaktag/pkg/domain/streak"
	"github.com/drahdiwaberl/streaktag/pkg/engine"
	"github.com/drahdiwaberl/streaktag/pkg/gpx"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/oauth"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/segmentlog"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/sentry"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (default: standard locations)")
		segmentMode   = flag.Bool("segment", false, "record segment effort counts")
		enrichMode    = flag.Bool("enrich", false, "audio-enrich the most recent activity")
		debugSessions = flag.Bool("debug-sessions", false, "dump recent listening sessions")
		authServe     = flag.Bool("auth-server", false, "serve the OAuth callback page")
	)
	flag.Parse()

	logger := bootstrap.NewLogger("streaktag").With("run_id", uuid.NewString())

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	if err := sentry.Init(sentry.Config{DSN: cfg.Sentry.DSN, Environment: "production"}, logger); err != nil {
		logger.Warn("sentry init failed", "error", err)
	}
	defer sentry.Flush(2 * time.Second)
	defer sentry.RecoverAndCapture(logger)

	ctx := context.Background()

	if *authServe {
		srv := &authserver.Server{
			OAuth:  oauth.NewConfig(cfg.Strava.ClientID, cfg.Strava.ClientSecret),
			Logger: logger.With("component", "authserver"),
		}
		if err := srv.ListenAndServe(cfg.Auth.ListenAddr); err != nil {
			fail(logger, "auth server failed", err)
		}
		return
	}

	svc, err := bootstrap.NewService(ctx, cfg, logger)
	if err != nil {
		fail(logger, "service init failed", err)
	}

	switch {
	case *segmentMode:
		runSegmentLog(ctx, svc, flag.Args())
	case *debugSessions:
		runDebugSessions(ctx, svc)
	case *enrichMode:
		runEnrich(ctx, svc)
	default:
		runProcess(ctx, svc, flag.Args())
	}
}

func fail(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	sentry.CaptureException(err, nil, logger)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}

func newOrchestrator(svc *bootstrap.Service, withRules bool) *engine.Orchestrator {
	o := &engine.Orchestrator{
		Activities:         svc.Strava,
		Sessions:           svc.Sessions,
		Scrobbles:          svc.Scrobbles,
		HistorySize:        svc.Config.HistoryPageSize,
		ScrobbleProfileURL: svc.Config.Lastfm.ProfileURL,
		Logger:             svc.Logger.With("component", "engine"),
	}
	if withRules {
		o.Rules = []streak.Rule{
			&streak.RunRule{Logger: o.Logger},
			&streak.CycleRule{
				BigSegmentID:   svc.Config.Strava.BigSegmentID,
				SmallSegmentID: svc.Config.Strava.SmallSegmentID,
				FetchDetail:    svc.Strava.FetchEfforts,
				Logger:         o.Logger,
			},
		}
	}
	return o
}

// runProcess handles the default mode: a single activity id argument, or the
// whole lookback window when no argument is given.
func runProcess(ctx context.Context, svc *bootstrap.Service, args []string) {
	orch := newOrchestrator(svc, true)

	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fail(svc.Logger, "invalid activity id", err)
		}
		if err := processActivity(ctx, svc, orch, id); err != nil {
			fail(svc.Logger, "processing failed", err)
		}
		return
	}

	after := time.Now().Add(-time.Duration(svc.Config.LookbackHours) * time.Hour)
	recent, err := svc.Strava.FetchRecent(ctx, after, 30)
	if err != nil {
		fail(svc.Logger, "recent activity fetch failed", err)
	}
	if len(recent) == 0 {
		svc.Logger.Info("no recent activities found")
		return
	}

	for _, act := range recent {
		if err := processActivity(ctx, svc, orch, act.ID); err != nil {
			svc.Logger.Error("processing failed", "activity_id", act.ID, "error", err)
			sentry.CaptureException(err, map[string]interface{}{"activity_id": act.ID}, svc.Logger)
		}
	}
}

// processActivity fetches the full activity, decides, applies the rename
// when something changed, and exports the GPX track.
func processActivity(ctx context.Context, svc *bootstrap.Service, orch *engine.Orchestrator, id int64) error {
	act, err := svc.Strava.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	decision := orch.Decide(ctx, act)
	if decision.Changed(act) {
		// Fire-and-forget: a failed rename is logged, never retried.
		if err := svc.Strava.Apply(ctx, act.ID, decision.Name, decision.Description); err != nil {
			svc.Logger.Error("rename failed", "activity_id", act.ID, "error", err)
		} else {
			act.Name = decision.Name
			act.Description = decision.Description
		}
	}

	if dir := svc.Config.GPXOutputDir; dir != "" {
		path, err := gpx.WriteFile(dir, act)
		if err != nil {
			svc.Logger.Error("gpx export failed", "activity_id", act.ID, "error", err)
		} else if path != "" {
			svc.Logger.Info("gpx file saved", "activity_id", act.ID, "path", path)
		}
	}
	return nil
}

// runEnrich audio-enriches the most recent activity of the enrich lookback
// window, without touching streak counters.
func runEnrich(ctx context.Context, svc *bootstrap.Service) {
	after := time.Now().Add(-time.Duration(svc.Config.EnrichLookbackHours) * time.Hour)
	recent, err := svc.Strava.FetchRecent(ctx, after, 30)
	if err != nil {
		fail(svc.Logger, "recent activity fetch failed", err)
	}
	if len(recent) == 0 {
		svc.Logger.Info("no activity found to enrich")
		return
	}

	// FetchRecent is oldest-first; the newest activity is the last element.
	act := recent[len(recent)-1]
	svc.Logger.Info("enriching activity", "activity_id", act.ID, "name", act.Name)

	orch := newOrchestrator(svc, false)
	decision := orch.Decide(ctx, &act)
	if !decision.Changed(&act) {
		svc.Logger.Info("no listening activity found for this timeframe", "activity_id", act.ID)
		return
	}
	if err := svc.Strava.Apply(ctx, act.ID, decision.Name, decision.Description); err != nil {
		fail(svc.Logger, "rename failed", err)
	}
}

// runSegmentLog records the current effort/athlete counts of a segment and
// posts the delta to the configured webhook.
func runSegmentLog(ctx context.Context, svc *bootstrap.Service, args []string) {
	segmentID := svc.Config.Strava.BigSegmentID
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fail(svc.Logger, "invalid segment id", err)
		}
		segmentID = id
	}

	stats, err := svc.Strava.FetchSegmentStats(ctx, segmentID)
	if err != nil {
		fail(svc.Logger, "segment fetch failed", err)
	}

	store, err := segmentlog.Open(svc.Config.SegmentLog.DBPath)
	if err != nil {
		fail(svc.Logger, "segment log open failed", err)
	}
	defer store.Close()

	delta, ok, err := store.Record(stats)
	if err != nil {
		fail(svc.Logger, "segment log write failed", err)
	}
	svc.Logger.Info("recorded segment snapshot",
		"segment_id", segmentID,
		"effort_count", stats.EffortCount,
		"athlete_count", stats.AthleteCount,
	)

	if ok && delta >= 0 {
		notifier := segmentlog.NewNotifier(svc.Config.SegmentLog.WebhookURL)
		if err := notifier.Notify(ctx, segmentID, delta); err != nil {
			svc.Logger.Error("webhook notify failed", "segment_id", segmentID, "error", err)
		} else {
			svc.Logger.Info("effort delta sent", "segment_id", segmentID, "delta", delta)
		}
	}
}

// runDebugSessions prints the last three listening sessions and the most
// recent activity's time window.
func runDebugSessions(ctx context.Context, svc *bootstrap.Service) {
	if svc.Sessions == nil {
		fmt.Println("audiobookshelf not configured")
	} else {
		sessions, err := svc.Sessions.FetchSessions(ctx)
		if err != nil {
			fail(svc.Logger, "session fetch failed", err)
		}
		sort.SliceStable(sessions, func(i, j int) bool {
			return sessions[i].StartedAt.After(sessions[j].StartedAt)
		})
		if len(sessions) > 3 {
			sessions = sessions[:3]
		}
		fmt.Println("Last 3 listening sessions:")
		for _, s := range sessions {
			fmt.Printf("Session ID: %s\n", s.ID)
			fmt.Printf("  Media:       %s: %s\n", s.MediaType, s.MediaTitle)
			fmt.Printf("  Start (UTC): %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("  End (UTC):   %s\n", s.EndedAt.Format("2006-01-02 15:04:05"))
			fmt.Println("----------")
		}
	}

	after := time.Now().Add(-time.Duration(svc.Config.EnrichLookbackHours) * time.Hour)
	recent, err := svc.Strava.FetchRecent(ctx, after, 30)
	if err != nil {
		fail(svc.Logger, "recent activity fetch failed", err)
	}
	if len(recent) == 0 {
		fmt.Println("No recent activities found.")
		return
	}
	act := recent[len(recent)-1]
	printActivityDebug(&act)
}

func printActivityDebug(act *activity.Activity) {
	fmt.Println("Strava Activity Details:")
	fmt.Printf("  ID: %d\n", act.ID)
	fmt.Printf("  Start (UTC): %s\n", act.StartDate.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Elapsed time: %d seconds\n", act.ElapsedSec)
	fmt.Printf("  End (UTC):   %s\n", act.End().Format("2006-01-02 15:04:05"))
}
