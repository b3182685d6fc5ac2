package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Writer persists one record. *Service satisfies it.
type Writer interface {
	Append(ctx context.Context, r Record) error
}

// RecorderConfig sizes the background write queue; zero fields take defaults.
type RecorderConfig struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
	Logger       *slog.Logger
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	out := c
	if out.QueueSize <= 0 {
		out.QueueSize = 1024
	}
	if out.Workers <= 0 {
		out.Workers = 4
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 5 * time.Second
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

// Recorder persists records off the request path.
//
// Properties:
// - Enqueue never blocks; records are dropped when the queue is full or closed.
// - Each write gets its own timeout and is detached from the request context.
// - Store errors and panics are contained here and never retried.
type Recorder struct {
	w       Writer
	queue   chan Record
	timeout time.Duration
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewRecorder(w Writer, cfg RecorderConfig) *Recorder {
	cfg = cfg.withDefaults()
	r := &Recorder{
		w:       w,
		queue:   make(chan Record, cfg.QueueSize),
		timeout: cfg.WriteTimeout,
		log:     cfg.Logger,
		done:    make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go func() {
			defer wg.Done()
			for rec := range r.queue {
				queueDepth.Dec()
				r.write(rec)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(r.done)
	}()
	return r
}

// Enqueue hands rec to the background workers and reports whether it was accepted.
func (r *Recorder) Enqueue(rec Record) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		recordsTotal.WithLabelValues(resultDropped).Inc()
		return false
	}
	select {
	case r.queue <- rec:
		queueDepth.Inc()
		return true
	default:
		recordsTotal.WithLabelValues(resultDropped).Inc()
		r.log.Debug("activity queue full, dropping record", "action", rec.Action)
		return false
	}
}

// Close stops accepting records and waits for queued ones to be written.
// It returns ctx.Err() if ctx ends first; remaining writes continue in the background.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) write(rec Record) {
	start := time.Now()
	err := r.safeAppend(rec)
	writeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		recordsTotal.WithLabelValues(resultFailed).Inc()
		r.log.Debug("activity write failed", "action", rec.Action, "err", err)
		return
	}
	recordsTotal.WithLabelValues(resultPersisted).Inc()
}

func (r *Recorder) safeAppend(rec Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("activity: writer panic: %v", p)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.w.Append(ctx, rec)
}
