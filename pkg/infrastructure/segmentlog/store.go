// Package segmentlog keeps an on-disk history of segment effort counts so
// deltas between runs can be computed and forwarded to a webhook.
package segmentlog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	shared "github.com/drahdiwaberl/streaktag/pkg"
)

// Store is a SQLite-backed log of segment effort snapshots.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the effort log at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open segment log: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS segment_efforts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			segment_id INTEGER NOT NULL,
			effort_count INTEGER NOT NULL,
			athlete_count INTEGER,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate segment log: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a snapshot and returns the effort-count delta against the
// previous snapshot for the same segment. ok is false when this is the
// first snapshot.
func (s *Store) Record(stats *shared.SegmentStats) (delta int64, ok bool, err error) {
	var last int64
	err = s.db.QueryRow(
		`SELECT effort_count FROM segment_efforts WHERE segment_id = ? ORDER BY timestamp DESC, id DESC LIMIT 1`,
		stats.SegmentID,
	).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	case err != nil:
		return 0, false, fmt.Errorf("read last effort count: %w", err)
	default:
		delta = stats.EffortCount - last
		ok = true
	}

	_, insErr := s.db.Exec(
		`INSERT INTO segment_efforts (segment_id, effort_count, athlete_count, timestamp) VALUES (?, ?, ?, ?)`,
		stats.SegmentID, stats.EffortCount, stats.AthleteCount, time.Now().UTC().Format(time.RFC3339),
	)
	if insErr != nil {
		return 0, false, fmt.Errorf("insert effort snapshot: %w", insErr)
	}
	return delta, ok, nil
}
