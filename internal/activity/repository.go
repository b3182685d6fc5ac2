package activity

import (
	"context"
	"time"
)

// Repository is the persistence contract for activity records.
//
// It MUST be append-only: there is no Update, and deletion lives on Pruner.
type Repository interface {
	Insert(ctx context.Context, r Record) error
	// ListByActor returns at most limit records for actorID, newest first.
	ListByActor(ctx context.Context, actorID string, limit int) ([]Record, error)
}

// Pruner removes records created before cutoff and reports how many were removed.
// Only the retention janitor uses it.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
