// Package realtime routes push events from the remote record store into
// the local cache. It is the fast path for remote changes; the pull
// reconciler is the eventual-consistency fallback for events missed while
// disconnected.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dukerupert/hearth/internal/cache"
	"github.com/dukerupert/hearth/internal/remote"
)

// Applier is the cache write contract the router drives. *cache.Cache
// satisfies it.
type Applier interface {
	Upsert(ctx context.Context, table cache.Table, rec remote.Record) error
	DeleteByServerID(ctx context.Context, table cache.Table, serverID string) error
}

// Source opens per-collection push subscriptions. *remote.Client
// satisfies it.
type Source interface {
	SubscribeCollection(collection string, cb func(remote.Event)) (func(), error)
}

// Manager owns the push-subscription lifecycle for all watched tables.
// Callers must Unsubscribe before tearing down the remote client (logout,
// server change) so no subscription leaks against a stale client.
type Manager struct {
	source Source
	cache  Applier
	logger *slog.Logger

	mu         sync.Mutex
	subscribed bool
	unsubs     []func()
}

// New creates a Manager. If logger is nil the default logger is used.
func New(source Source, cache Applier, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// Subscribe opens one push subscription per watched table. Calling it
// while already subscribed is a no-op. A table whose subscription fails to
// open is logged and skipped; the remaining tables still subscribe, and
// the manager counts as subscribed either way.
func (m *Manager) Subscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribed {
		return
	}

	for _, table := range cache.SyncOrder {
		unsub, err := m.source.SubscribeCollection(cache.CollectionFor(table), func(evt remote.Event) {
			m.apply(table, evt)
		})
		if err != nil {
			m.logger.Error("subscribe failed for table", "table", table, "error", err)
			continue
		}
		m.unsubs = append(m.unsubs, unsub)
	}
	m.subscribed = true
}

// Unsubscribe cancels every held subscription and resets state. Calling it
// when never subscribed is a no-op. Each handle is invoked under its own
// guard so one failing handle cannot block the others; state is cleared
// unconditionally.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.subscribed {
		return
	}

	for _, unsub := range m.unsubs {
		m.invoke(unsub)
	}
	m.unsubs = nil
	m.subscribed = false
}

// Subscribed reports whether Subscribe has run more recently than
// Unsubscribe.
func (m *Manager) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed
}

// apply routes one push event into the cache. Failures are logged, never
// propagated into the subscription transport: a bad event must not kill
// the subscription.
func (m *Manager) apply(table cache.Table, evt remote.Event) {
	ctx := context.Background()

	var err error
	if evt.Action == remote.ActionDelete {
		err = m.cache.DeleteByServerID(ctx, table, evt.Record.ID)
	} else {
		// create, update, and any unrecognized action all land as upsert.
		err = m.cache.Upsert(ctx, table, evt.Record)
	}
	if err != nil {
		m.logger.Error("apply realtime event failed",
			"table", table, "action", evt.Action, "record", evt.Record.ID, "error", err)
	}
}

// invoke runs an unsubscribe handle, containing any panic.
func (m *Manager) invoke(unsub func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("unsubscribe handle failed", "panic", r)
		}
	}()
	unsub()
}
