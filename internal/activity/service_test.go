package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_AppendRequiresActionAndMethod(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	err := svc.Append(context.Background(), Record{Method: "GET"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	err = svc.Append(context.Background(), Record{Action: "GET /"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestService_AppendAssignsIdentityAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.clock = func() time.Time { return fixed }

	require.NoError(t, svc.Append(context.Background(), Record{Action: "GET /api/products", Method: "GET", Path: "/api/products", StatusCode: 200}))

	records := repo.Records()
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, fixed, records[0].CreatedAt)
	assert.NotNil(t, records[0].Metadata.BodyKeys)
	assert.NotNil(t, records[0].Metadata.Query)
}

func TestService_ListByActorNewestFirstWithLimit(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Append(context.Background(), Record{
			ActorID:   "u1",
			Action:    "GET /api/orders",
			Method:    "GET",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, svc.Append(context.Background(), Record{ActorID: "u2", Action: "GET /", Method: "GET", CreatedAt: base}))
	require.NoError(t, svc.Append(context.Background(), Record{Action: "GET /", Method: "GET", CreatedAt: base}))

	out, err := svc.ListByActor(context.Background(), "u1", 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, base.Add(4*time.Minute), out[0].CreatedAt)
	assert.Equal(t, base.Add(2*time.Minute), out[2].CreatedAt)
	for _, r := range out {
		assert.Equal(t, "u1", r.ActorID)
	}

	views := Views(out)
	require.Len(t, views, 3)
	assert.Equal(t, out[0].ID, views[0].ID)
}

func TestService_ListByActorRequiresActor(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.ListByActor(context.Background(), "", 10)
	assert.True(t, errors.Is(err, ErrActorRequired))
}

func TestService_NilRepository(t *testing.T) {
	svc := NewService(nil)
	assert.ErrorIs(t, svc.Append(context.Background(), Record{Action: "GET /", Method: "GET"}), ErrRepoNotConfigured)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxListLimit, ClampLimit(10_000))
}

func TestRedisActorKey(t *testing.T) {
	assert.Equal(t, "activity:actor:u1", actorKey("u1"))
	assert.Equal(t, "activity:anonymous", actorKey(""))
}
