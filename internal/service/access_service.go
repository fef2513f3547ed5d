package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

type AccessRepository interface {
	Append(ctx context.Context, events ...*history.Event) error
}

// AccessRecorder persists login events off the request path. Entity writes are
// recorded by the audit plugin inside their own transaction instead.
type AccessRecorder struct {
	repo    AccessRepository
	log     *zap.Logger
	metrics *metrics.Collector
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	events chan *history.Event
	done   chan struct{}
}

func NewAccessRecorder(repo AccessRepository, cfg config.AuditConfig, m *metrics.Collector, log *zap.Logger) *AccessRecorder {
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	r := &AccessRecorder{
		repo:    repo,
		log:     log.Named("access"),
		metrics: m,
		timeout: cfg.ShutdownTimeout,
		events:  make(chan *history.Event, size),
		done:    make(chan struct{}),
	}
	go r.worker()
	return r
}

// Record enqueues e with the request's actor and request id. If the buffer is
// full or the recorder is shut down the event is dropped and counted.
func (r *AccessRecorder) Record(ctx context.Context, e *history.Event) {
	actor := audit.ActorFrom(ctx)
	if e.ActorID == nil {
		e.ActorID = actor.UserID
	}
	if e.ActorRole == "" {
		e.ActorRole = actor.Role
	}
	if e.RequestID == "" {
		e.RequestID = actor.RequestID
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop(e, "access recorder closed, dropping event")
		return
	}
	select {
	case r.events <- e:
	default:
		r.drop(e, "access buffer full, dropping event")
	}
}

func (r *AccessRecorder) drop(e *history.Event, msg string) {
	r.metrics.AccessDropped.Inc()
	r.log.Warn(msg,
		zap.String("kind", string(e.Kind)),
		zap.String("entity_id", e.EntityID),
	)
}

// Shutdown drains the buffer, giving up after the configured timeout.
func (r *AccessRecorder) Shutdown() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
	case <-time.After(r.timeout):
		r.log.Warn("access recorder shutdown timed out; some events may be lost")
	}
}

func (r *AccessRecorder) worker() {
	defer close(r.done)
	for e := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.repo.Append(ctx, e); err != nil {
			r.log.Error("failed to persist access event", zap.Error(err))
		} else {
			r.metrics.ObserveEvent(e)
		}
		cancel()
	}
}
