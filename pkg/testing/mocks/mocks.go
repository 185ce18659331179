// Package mocks provides func-field test doubles for the collaborator
// contracts. A nil func falls back to a harmless default.
package mocks

import (
	"context"
	"fmt"
	"time"

	shared "github.com/drahdiwaberl/streaktag/pkg"
	"github.com/drahdiwaberl/streaktag/pkg/domain/activity"
	"github.com/drahdiwaberl/streaktag/pkg/domain/enrichment"
)

// --- Mock ActivitySource ---

type MockActivitySource struct {
	FetchByIDFunc   func(ctx context.Context, id int64) (*activity.Activity, error)
	FetchPageFunc   func(ctx context.Context, perPage int) ([]activity.Activity, error)
	FetchRecentFunc func(ctx context.Context, after time.Time, perPage int) ([]activity.Activity, error)
}

func (m *MockActivitySource) FetchByID(ctx context.Context, id int64) (*activity.Activity, error) {
	if m.FetchByIDFunc != nil {
		return m.FetchByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("activity %d: %w", id, shared.ErrNotFound)
}

func (m *MockActivitySource) FetchPage(ctx context.Context, perPage int) ([]activity.Activity, error) {
	if m.FetchPageFunc != nil {
		return m.FetchPageFunc(ctx, perPage)
	}
	return nil, nil
}

func (m *MockActivitySource) FetchRecent(ctx context.Context, after time.Time, perPage int) ([]activity.Activity, error) {
	if m.FetchRecentFunc != nil {
		return m.FetchRecentFunc(ctx, after, perPage)
	}
	return nil, nil
}

// --- Mock SegmentDetailSource ---

type MockSegmentDetailSource struct {
	FetchEffortsFunc func(ctx context.Context, activityID int64) ([]activity.SegmentEffort, error)
}

func (m *MockSegmentDetailSource) FetchEfforts(ctx context.Context, activityID int64) ([]activity.SegmentEffort, error) {
	if m.FetchEffortsFunc != nil {
		return m.FetchEffortsFunc(ctx, activityID)
	}
	return nil, nil
}

// --- Mock ListeningSessionSource ---

type MockSessionSource struct {
	FetchSessionsFunc func(ctx context.Context) ([]enrichment.Session, error)
}

func (m *MockSessionSource) FetchSessions(ctx context.Context) ([]enrichment.Session, error) {
	if m.FetchSessionsFunc != nil {
		return m.FetchSessionsFunc(ctx)
	}
	return nil, nil
}

// --- Mock ScrobbleSource ---

type MockScrobbleSource struct {
	FetchScrobblesFunc func(ctx context.Context, from, to time.Time) ([]enrichment.Scrobble, error)
}

func (m *MockScrobbleSource) FetchScrobbles(ctx context.Context, from, to time.Time) ([]enrichment.Scrobble, error) {
	if m.FetchScrobblesFunc != nil {
		return m.FetchScrobblesFunc(ctx, from, to)
	}
	return nil, nil
}

// --- Mock Renamer ---

type MockRenamer struct {
	ApplyFunc func(ctx context.Context, activityID int64, name, description string) error

	// Applied records every call for assertion.
	Applied []AppliedRename
}

type AppliedRename struct {
	ActivityID  int64
	Name        string
	Description string
}

func (m *MockRenamer) Apply(ctx context.Context, activityID int64, name, description string) error {
	m.Applied = append(m.Applied, AppliedRename{ActivityID: activityID, Name: name, Description: description})
	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, activityID, name, description)
	}
	return nil
}

// --- Mock SegmentStatsSource ---

type MockSegmentStatsSource struct {
	FetchSegmentStatsFunc func(ctx context.Context, segmentID int64) (*shared.SegmentStats, error)
}

func (m *MockSegmentStatsSource) FetchSegmentStats(ctx context.Context, segmentID int64) (*shared.SegmentStats, error) {
	if m.FetchSegmentStatsFunc != nil {
		return m.FetchSegmentStatsFunc(ctx, segmentID)
	}
	return nil, fmt.Errorf("segment %d: %w", segmentID, shared.ErrNotFound)
}
