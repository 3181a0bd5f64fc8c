// Package notify fans lifecycle events out to the admin audience. The
// service layer hands events to a Dispatcher, which never blocks; a single
// worker drains the queue into every configured Sink.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
)

// DefaultQueueSize is used when NewDispatcher is given a non-positive size.
const DefaultQueueSize = 256

// Sink delivers one event to one destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e domain.Event) error
}

// Dispatcher is a bounded event queue drained by one background worker.
type Dispatcher struct {
	queue   chan domain.Event
	sinks   []Sink
	logger  *slog.Logger
	timeout time.Duration

	dropped atomic.Uint64

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewDispatcher creates a dispatcher over sinks. Call Start to begin
// delivery and Stop to drain and shut down.
func NewDispatcher(logger *slog.Logger, size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		queue:   make(chan domain.Event, size),
		sinks:   sinks,
		logger:  logger,
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
}

// Notify enqueues e. When the queue is full the event is dropped.
func (d *Dispatcher) Notify(e domain.Event) {
	select {
	case d.queue <- e:
	default:
		d.dropped.Add(1)
		d.logger.Warn("notification queue full, dropping event",
			slog.String("event_id", e.ID),
			slog.String("type", string(e.Type)),
		)
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
		d.logger.Info("notification dispatcher started", slog.Int("sinks", len(d.sinks)))
	})
}

// Stop closes the queue and waits until queued events are delivered or
// ctx expires. Notify must not be called after Stop.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.queue) })
	select {
	case <-d.done:
		d.logger.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e domain.Event) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := s.Publish(ctx, e); err != nil {
			d.logger.Warn("notification delivery failed",
				slog.String("sink", s.Name()),
				slog.String("event_id", e.ID),
				slog.Any("error", err),
			)
		}
		cancel()
	}
}
