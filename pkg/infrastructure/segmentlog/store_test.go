package segmentlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/drahdiwaberl/streaktag/pkg"
)

func TestRecordDeltas(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	stats := &shared.SegmentStats{SegmentID: 101, EffortCount: 5000, AthleteCount: 400}

	delta, ok, err := store.Record(stats)
	require.NoError(t, err)
	assert.False(t, ok, "first snapshot has nothing to diff against")
	assert.Zero(t, delta)

	stats.EffortCount = 5025
	delta, ok, err = store.Record(stats)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(25), delta)

	// Upstream rewrote history: the delta goes negative but is still reported.
	stats.EffortCount = 5010
	delta, ok, err = store.Record(stats)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(-15), delta)
}

func TestRecordSegmentsIndependent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, _, err = store.Record(&shared.SegmentStats{SegmentID: 101, EffortCount: 100})
	require.NoError(t, err)

	// A different segment starts its own history.
	_, ok, err := store.Record(&shared.SegmentStats{SegmentID: 202, EffortCount: 7})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenCreatesFile(t *testing.T) {
	path := t.TempDir() + "/efforts.db"
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, _, err = store.Record(&shared.SegmentStats{SegmentID: 1, EffortCount: 1})
	assert.NoError(t, err)
}

func TestNotify(t *testing.T) {
	var got map[string]int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	require.NoError(t, n.Notify(context.Background(), 101, 25))
	assert.Equal(t, int64(25), got["effort_diff"])
	assert.Equal(t, int64(101), got["segment_id"])
}

func TestNotifyDisabled(t *testing.T) {
	var n *Notifier
	assert.NoError(t, n.Notify(context.Background(), 101, 25))
	assert.NoError(t, NewNotifier("").Notify(context.Background(), 101, 25))
}
