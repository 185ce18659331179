package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds all streaktag configuration. Values come from an optional
// TOML file overlaid by environment variables; secrets normally arrive via
// the environment only.
type Config struct {
	Timezone            string `toml:"timezone"`
	LookbackHours       int    `toml:"lookback_hours"`
	EnrichLookbackHours int    `toml:"enrich_lookback_hours"`
	HistoryPageSize     int    `toml:"history_page_size"`
	GPXOutputDir        string `toml:"gpx_output_dir"`

	Strava         StravaConfig         `toml:"strava"`
	Audiobookshelf AudiobookshelfConfig `toml:"audiobookshelf"`
	Lastfm         LastfmConfig         `toml:"lastfm"`
	SegmentLog     SegmentLogConfig     `toml:"segment_log"`
	Sentry         SentryConfig         `toml:"sentry"`
	Auth           AuthConfig           `toml:"auth"`
}

type StravaConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`

	// The two designated cycling streak segments.
	BigSegmentID   int64 `toml:"big_segment_id"`
	SmallSegmentID int64 `toml:"small_segment_id"`
}

type AudiobookshelfConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type LastfmConfig struct {
	APIKey     string `toml:"api_key"`
	User       string `toml:"user"`
	ProfileURL string `toml:"profile_url"`
}

type SegmentLogConfig struct {
	DBPath     string `toml:"db_path"`
	WebhookURL string `toml:"webhook_url"`
}

type SentryConfig struct {
	DSN string `toml:"dsn"`
}

type AuthConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// DefaultConfig returns config with the historical defaults baked in.
func DefaultConfig() Config {
	return Config{
		Timezone:            "Europe/Vienna",
		LookbackHours:       14,
		EnrichLookbackHours: 24,
		HistoryPageSize:     100,
		SegmentLog: SegmentLogConfig{
			DBPath: "segment_history.db",
		},
		Auth: AuthConfig{
			ListenAddr: ":8723",
		},
	}
}

// LoadConfig reads the config file (explicit path, or the first of the
// standard locations that exists), then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	paths := []string{path}
	if path == "" {
		paths = configPaths()
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		} else if path != "" {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Lastfm.ProfileURL == "" && cfg.Lastfm.User != "" {
		cfg.Lastfm.ProfileURL = "https://www.last.fm/user/" + cfg.Lastfm.User
	}
	return &cfg, nil
}

func configPaths() []string {
	paths := []string{"streaktag.toml"}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "streaktag", "config.toml"))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "streaktag", "config.toml"))
	}
	return paths
}

func applyEnv(cfg *Config) {
	setString(&cfg.Strava.ClientID, "STRAVA_CLIENT_ID")
	setString(&cfg.Strava.ClientSecret, "STRAVA_CLIENT_SECRET")
	setString(&cfg.Strava.AccessToken, "STRAVA_ACCESS_TOKEN")
	setString(&cfg.Strava.RefreshToken, "STRAVA_REFRESH_TOKEN")
	setInt64(&cfg.Strava.BigSegmentID, "STRAVA_BIG_SEGMENT_ID")
	setInt64(&cfg.Strava.SmallSegmentID, "STRAVA_SMALL_SEGMENT_ID")
	setString(&cfg.Audiobookshelf.URL, "ABS_URL")
	setString(&cfg.Audiobookshelf.Token, "ABS_API_TOKEN")
	setString(&cfg.Lastfm.APIKey, "LASTFM_API_KEY")
	setString(&cfg.Lastfm.User, "LASTFM_USER")
	setString(&cfg.SegmentLog.WebhookURL, "SEGMENT_WEBHOOK_URL")
	setString(&cfg.Sentry.DSN, "SENTRY_DSN")
	setString(&cfg.GPXOutputDir, "GPX_OUTPUT_DIR")
}

func setString(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
