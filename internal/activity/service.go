package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var (
	ErrInvalidRecord     = errors.New("activity: invalid record")
	ErrActorRequired     = errors.New("activity: actor id required")
	ErrRepoNotConfigured = errors.New("activity: repository not configured")
)

// Service is the store-facing API for activity records.
//
// Callers on the request path must treat Append as best-effort; see Recorder.
type Service struct {
	repo     Repository
	validate *validator.Validate
	clock    func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(), clock: time.Now}
}

// Append stores r, assigning ID and CreatedAt when absent.
func (s *Service) Append(ctx context.Context, r Record) error {
	if s.repo == nil {
		return ErrRepoNotConfigured
	}
	if err := s.validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.clock().UTC()
	}
	if r.Metadata.BodyKeys == nil {
		r.Metadata.BodyKeys = []string{}
	}
	if r.Metadata.Query == nil {
		r.Metadata.Query = map[string]any{}
	}
	return s.repo.Insert(ctx, r)
}

// ListByActor returns the most recent records for a user, newest first.
// limit <= 0 selects DefaultListLimit; larger values are clamped to MaxListLimit.
func (s *Service) ListByActor(ctx context.Context, actorID string, limit int) ([]Record, error) {
	if s.repo == nil {
		return nil, ErrRepoNotConfigured
	}
	if actorID == "" {
		return nil, ErrActorRequired
	}
	return s.repo.ListByActor(ctx, actorID, ClampLimit(limit))
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
