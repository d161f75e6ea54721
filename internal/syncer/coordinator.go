// Package syncer serializes full reconciliation passes. At most one pass
// runs at a time; callers arriving mid-pass coalesce into a single
// trailing pass instead of queueing.
package syncer

import (
	"context"
	"log/slog"
	"sync"
)

// Gate reports whether the remote store can be pulled from right now.
// *remote.AuthStore satisfies it.
type Gate interface {
	IsValid() bool
}

// Puller runs one full reconciliation pass. Pass-internal failures are its
// own concern; it does not return them.
type Puller interface {
	PullAll(ctx context.Context)
}

// PullFunc adapts a function to the Puller interface.
type PullFunc func(ctx context.Context)

func (f PullFunc) PullAll(ctx context.Context) { f(ctx) }

// Coordinator owns the in-progress/requested flag pair that serializes
// sync passes. State is per instance, not process-wide, so independent
// app instances and tests cannot cross-contaminate.
type Coordinator struct {
	gate   Gate
	puller Puller
	logger *slog.Logger

	mu         sync.Mutex
	inProgress bool
	requested  bool
}

// New creates a Coordinator. If logger is nil the default logger is used.
func New(gate Gate, puller Puller, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		gate:   gate,
		puller: puller,
		logger: logger,
	}
}

// Sync runs a reconciliation pass, blocking the caller until it finishes.
// If a pass is already in flight the call records a trailing request and
// returns immediately: the in-flight pass re-runs once after completing,
// however many requests arrived meanwhile. The re-run is a loop, not
// recursion, so rapid-fire triggering cannot grow the stack.
func (c *Coordinator) Sync(ctx context.Context) {
	c.mu.Lock()
	if c.inProgress {
		c.requested = true
		c.mu.Unlock()
		return
	}
	c.inProgress = true
	c.mu.Unlock()

	for {
		c.runPass(ctx)

		c.mu.Lock()
		if c.requested {
			c.requested = false
			c.mu.Unlock()
			continue
		}
		c.inProgress = false
		c.mu.Unlock()
		return
	}
}

// runPass performs one gated pull. The auth gate is checked first so an
// unauthenticated pass never touches local storage.
func (c *Coordinator) runPass(ctx context.Context) {
	if c.gate == nil || !c.gate.IsValid() {
		c.logger.Info("sync skipped: remote client unavailable or not authenticated")
		return
	}
	c.puller.PullAll(ctx)
}
