package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/hearth/internal/remote"
)

// fakeLister serves canned record lists per collection and records the
// sort expression it was asked for.
type fakeLister struct {
	records map[string][]remote.Record
	fail    map[string]bool
	sorts   []string
}

func (f *fakeLister) ListRecords(ctx context.Context, collection, sort string) ([]remote.Record, error) {
	f.sorts = append(f.sorts, sort)
	if f.fail[collection] {
		return nil, errors.New("boom")
	}
	return f.records[collection], nil
}

func TestPullRemovesVanishedRecords(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C"} {
		if err := c.Upsert(ctx, TableListItems, itemRecord(id, "item "+id)); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	src := &fakeLister{records: map[string][]remote.Record{
		"list_items": {itemRecord("A", "item A"), itemRecord("B", "item B")},
	}}
	c.PullAll(ctx, src)

	for _, id := range []string{"A", "B"} {
		if got := countByServerID(t, c, TableListItems, id); got != 1 {
			t.Errorf("row %s count = %d, want 1", id, got)
		}
	}
	if got := countByServerID(t, c, TableListItems, "C"); got != 0 {
		t.Errorf("vanished row C still present, count = %d", got)
	}
}

func TestPullCreatesAndUpdates(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if err := c.Upsert(ctx, TableListItems, itemRecord("A", "old name")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	src := &fakeLister{records: map[string][]remote.Record{
		"list_items": {itemRecord("A", "new name"), itemRecord("B", "brand new")},
	}}
	c.PullAll(ctx, src)

	var name string
	if err := c.db.QueryRow(`SELECT name FROM list_items WHERE server_id = ?`, "A").Scan(&name); err != nil {
		t.Fatalf("read A: %v", err)
	}
	if name != "new name" {
		t.Errorf("A name = %q, want %q", name, "new name")
	}
	if got := countByServerID(t, c, TableListItems, "B"); got != 1 {
		t.Errorf("B count = %d, want 1", got)
	}
}

func TestPullFetchesEveryTableFreshestFirst(t *testing.T) {
	c := setupCache(t)
	src := &fakeLister{records: map[string][]remote.Record{}}

	c.PullAll(context.Background(), src)

	if len(src.sorts) != len(SyncOrder) {
		t.Fatalf("fetched %d collections, want %d", len(src.sorts), len(SyncOrder))
	}
	for i, sort := range src.sorts {
		if sort != "-updated" {
			t.Errorf("fetch %d sort = %q, want -updated", i, sort)
		}
	}
}

func TestPullPopulatesColdTable(t *testing.T) {
	// A pull into a table no prior Upsert has touched must still resolve
	// the table's schema and land the rows.
	c := setupCache(t)

	src := &fakeLister{records: map[string][]remote.Record{
		"list_items": {itemRecord("A", "item A")},
	}}
	c.PullAll(context.Background(), src)

	if got := countByServerID(t, c, TableListItems, "A"); got != 1 {
		t.Errorf("row A count = %d, want 1", got)
	}
}

func TestPullTableFailureIsolated(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	// families fails; list_items must still reconcile, and the stale
	// families row must survive the aborted pass untouched.
	if err := c.Upsert(ctx, TableFamilies, remote.Record{
		ID:     "f1",
		Fields: map[string]any{"name": "Smiths"},
	}); err != nil {
		t.Fatalf("seed family: %v", err)
	}

	src := &fakeLister{
		records: map[string][]remote.Record{
			"list_items": {itemRecord("A", "item A")},
		},
		fail: map[string]bool{"families": true},
	}
	c.PullAll(ctx, src)

	if got := countByServerID(t, c, TableFamilies, "f1"); got != 1 {
		t.Errorf("family row count = %d, want 1 (failed table must be left as-is)", got)
	}
	if got := countByServerID(t, c, TableListItems, "A"); got != 1 {
		t.Errorf("list item count = %d, want 1 (other tables must still sync)", got)
	}
}

func TestPullEmptyRemoteClearsTable(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if err := c.Upsert(ctx, TableListItems, itemRecord("A", "item A")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	src := &fakeLister{records: map[string][]remote.Record{}}
	c.PullAll(ctx, src)

	if got := countByServerID(t, c, TableListItems, "A"); got != 0 {
		t.Errorf("row count = %d, want 0", got)
	}
}
