// Package bootstrap wires configuration, logging and the API clients into a
// ready-to-use Service.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	shared "github.com/drahdiwaberl/streaktag/pkg"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/audiobookshelf"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/lastfm"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/oauth"
	"github.com/drahdiwaberl/streaktag/pkg/infrastructure/strava"
)

// Service holds initialized dependencies. Sessions and Scrobbles are nil
// when the corresponding integration is not configured.
type Service struct {
	Config *Config
	Logger *slog.Logger

	Strava    *strava.Client
	Tokens    oauth.TokenSource
	Sessions  shared.ListeningSessionSource
	Scrobbles shared.ScrobbleSource
}

// ComponentHandler wraps a slog.Handler to prepend [component] to the message.
type ComponentHandler struct {
	slog.Handler
	component string
}

// WithGroup implements slog.Handler.
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{
		Handler:   h.Handler.WithGroup(name),
		component: h.component,
	}
}

// WithAttrs implements slog.Handler.
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newComp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			newComp = a.Value.String()
		}
	}
	return &ComponentHandler{
		Handler:   h.Handler.WithAttrs(attrs),
		component: newComp,
	}
}

// Handle implements slog.Handler.
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false
		}
		return true
	})

	if comp != "" {
		newRecord := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", comp, r.Message), r.PC)
		r.Attrs(func(a slog.Attr) bool {
			newRecord.AddAttrs(a)
			return true
		})
		r = newRecord
	}

	return h.Handler.Handle(ctx, r)
}

// NewLogger creates a configured logger instance. Level comes from the
// LOG_LEVEL environment variable, defaulting to info.
func NewLogger(serviceName string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// NewService initializes the clients from config. Only Strava is mandatory.
func NewService(ctx context.Context, cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg.Strava.ClientID == "" || cfg.Strava.ClientSecret == "" {
		return nil, fmt.Errorf("strava client credentials not configured")
	}
	if cfg.Strava.AccessToken == "" && cfg.Strava.RefreshToken == "" {
		return nil, fmt.Errorf("no strava token configured; run with --auth-server to obtain one")
	}

	tokens := oauth.NewMemoryTokenSource(
		oauth.NewConfig(cfg.Strava.ClientID, cfg.Strava.ClientSecret),
		cfg.Strava.AccessToken,
		cfg.Strava.RefreshToken,
	)

	svc := &Service{
		Config: cfg,
		Logger: logger,
		Tokens: tokens,
		Strava: strava.NewClient(oauth.NewClient(tokens), logger.With("component", "strava")),
	}

	if cfg.Audiobookshelf.URL != "" && cfg.Audiobookshelf.Token != "" {
		svc.Sessions = audiobookshelf.NewClient(cfg.Audiobookshelf.URL, cfg.Audiobookshelf.Token)
	} else {
		logger.Info("audiobookshelf not configured, session enrichment disabled")
	}

	if cfg.Lastfm.APIKey != "" && cfg.Lastfm.User != "" {
		svc.Scrobbles = lastfm.NewClient(cfg.Lastfm.APIKey, cfg.Lastfm.User)
	} else {
		logger.Info("last.fm not configured, scrobble enrichment disabled")
	}

	return svc, nil
}
