package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_PrunesOnlyExpiredRecords(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, Record{ID: "old", Action: "GET /", Method: "GET", CreatedAt: now.Add(-100 * 24 * time.Hour)}))
	require.NoError(t, repo.Insert(ctx, Record{ID: "new", Action: "GET /", Method: "GET", CreatedAt: now.Add(-time.Hour)}))

	j := NewJanitor(repo, 90*24*time.Hour, time.Hour, nil)
	j.clock = func() time.Time { return now }

	n, err := j.PruneOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records := repo.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].ID)
}

func TestJanitor_ZeroRetentionKeepsEverything(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, Record{ID: "ancient", Action: "GET /", Method: "GET", CreatedAt: time.Unix(0, 0)}))

	j := NewJanitor(repo, 0, time.Hour, nil)
	n, err := j.PruneOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, repo.Records(), 1)
}

func TestJanitor_RunStopsWithContext(t *testing.T) {
	j := NewJanitor(NewMemoryRepo(), time.Hour, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
