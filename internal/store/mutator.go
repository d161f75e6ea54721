package store

import (
	"context"
	"fmt"

	"github.com/dukerupert/hearth/internal/cache"
	"github.com/dukerupert/hearth/internal/remote"
)

// Mutator is the write path the UI uses: every mutation goes to the remote
// store first, then is mirrored into the local cache directly so the app's
// own writes are visible without waiting for a push event or the next
// pull. Remote failures surface to the caller — the write is part of the
// user's explicit action and must not fail silently.
type Mutator struct {
	remote *remote.Client
	cache  *cache.Cache
}

func NewMutator(client *remote.Client, c *cache.Cache) *Mutator {
	return &Mutator{remote: client, cache: c}
}

// Create writes a new record remotely and mirrors it locally.
func (m *Mutator) Create(ctx context.Context, table cache.Table, fields map[string]any) (remote.Record, error) {
	rec, err := m.remote.Collection(cache.CollectionFor(table)).Create(ctx, fields)
	if err != nil {
		return rec, err
	}
	if err := m.cache.Upsert(ctx, table, rec); err != nil {
		return rec, fmt.Errorf("mirror create locally: %w", err)
	}
	return rec, nil
}

// Update patches a record remotely and mirrors the result locally.
func (m *Mutator) Update(ctx context.Context, table cache.Table, id string, fields map[string]any) (remote.Record, error) {
	rec, err := m.remote.Collection(cache.CollectionFor(table)).Update(ctx, id, fields)
	if err != nil {
		return rec, err
	}
	if err := m.cache.Upsert(ctx, table, rec); err != nil {
		return rec, fmt.Errorf("mirror update locally: %w", err)
	}
	return rec, nil
}

// Delete removes a record remotely, then drops the local row once the
// remote deletion is confirmed.
func (m *Mutator) Delete(ctx context.Context, table cache.Table, id string) error {
	if err := m.remote.Collection(cache.CollectionFor(table)).Delete(ctx, id); err != nil {
		return err
	}
	if err := m.cache.DeleteByServerID(ctx, table, id); err != nil {
		return fmt.Errorf("mirror delete locally: %w", err)
	}
	return nil
}
