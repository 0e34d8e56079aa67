package metrics

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultFlushInterval = time.Minute
	defaultFlushTimeout  = 10 * time.Second
)

// Sink persists tracker snapshots.
type Sink interface {
	SaveUsage(ctx context.Context, records []Record) error
}

// Flusher periodically writes tracker snapshots to a Sink.
type Flusher struct {
	tracker  *Tracker
	sink     Sink
	interval time.Duration
	done     chan struct{}
}

// NewFlusher returns nil when there is nothing to flush or nowhere to flush it.
func NewFlusher(tracker *Tracker, sink Sink, interval time.Duration) *Flusher {
	if tracker == nil || sink == nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &Flusher{tracker: tracker, sink: sink, interval: interval, done: make(chan struct{})}
}

// Start runs the flush loop in the background until ctx is done, then flushes once more.
func (f *Flusher) Start(ctx context.Context) {
	if f == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go f.run(ctx)
	log.Infof("usage metrics flusher started (interval=%s)", f.interval)
}

// Wait blocks until the loop started by Start has made its final flush.
func (f *Flusher) Wait() {
	if f == nil {
		return
	}
	<-f.done
}

func (f *Flusher) run(ctx context.Context) {
	defer close(f.done)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), defaultFlushTimeout)
			if err := f.FlushOnce(finalCtx); err != nil {
				log.WithError(err).Warn("metrics flusher: final flush failed")
			}
			cancel()
			return
		case <-ticker.C:
			if err := f.FlushOnce(ctx); err != nil {
				log.WithError(err).Warn("metrics flusher: flush failed")
			}
		}
	}
}

// FlushOnce writes the current snapshot. An empty tracker writes nothing.
func (f *Flusher) FlushOnce(ctx context.Context) error {
	if f == nil || f.sink == nil {
		return fmt.Errorf("metrics flusher: nil sink")
	}
	records := f.tracker.All()
	if len(records) == 0 {
		return nil
	}
	if err := f.sink.SaveUsage(ctx, records); err != nil {
		return fmt.Errorf("metrics flusher: save: %w", err)
	}
	return nil
}
