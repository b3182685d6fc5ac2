package activity

import (
	"context"
	"log/slog"
	"time"
)

// Janitor applies the retention window to a store.
type Janitor struct {
	store     Pruner
	retention time.Duration
	interval  time.Duration
	timeout   time.Duration
	clock     func() time.Time
	log       *slog.Logger
}

func NewJanitor(store Pruner, retention, interval time.Duration, log *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Janitor{
		store:     store,
		retention: retention,
		interval:  interval,
		timeout:   time.Minute,
		clock:     time.Now,
		log:       log,
	}
}

// PruneOnce deletes records older than the retention window.
// A zero retention keeps everything.
func (j *Janitor) PruneOnce(ctx context.Context) (int64, error) {
	if j.retention <= 0 || j.store == nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cutoff := j.clock().UTC().Add(-j.retention)
	n, err := j.store.DeleteBefore(ctx, cutoff)
	if n > 0 {
		prunedTotal.Add(float64(n))
	}
	return n, err
}

// Run prunes immediately and then every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	if j.retention <= 0 {
		return
	}
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		n, err := j.PruneOnce(ctx)
		if err != nil && ctx.Err() == nil {
			j.log.Warn("activity prune failed", "err", err)
		} else if n > 0 {
			j.log.Info("activity pruned", "removed", n, "retention", j.retention.String())
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
