package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/hearth/internal/cache"
	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/remote"
)

func setupTestDB(t *testing.T) (*sql.DB, *cache.Cache) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return db, cache.New(db, logger)
}

func mustUpsert(t *testing.T, c *cache.Cache, table cache.Table, rec remote.Record) {
	t.Helper()
	if err := c.Upsert(context.Background(), table, rec); err != nil {
		t.Fatalf("upsert %s/%s: %v", table, rec.ID, err)
	}
}

func TestListStoreReadsSyncedRows(t *testing.T) {
	db, c := setupTestDB(t)

	mustUpsert(t, c, cache.TableLists, remote.Record{
		ID:      "l1",
		Created: "2024-06-15T10:30:00.000Z",
		Updated: "2024-06-15T10:30:00.000Z",
		Fields: map[string]any{
			"family":     "f1",
			"name":       "Groceries",
			"kind":       "shopping",
			"archived":   false,
			"created_by": "u1",
		},
	})
	mustUpsert(t, c, cache.TableListItems, remote.Record{
		ID: "it1",
		Fields: map[string]any{
			"list":       "l1",
			"name":       "Milk",
			"checked":    true,
			"checked_by": "m1",
			"created_by": "m2",
		},
	})
	mustUpsert(t, c, cache.TableListItems, remote.Record{
		ID: "it2",
		Fields: map[string]any{
			"list":       "l1",
			"name":       "Bread",
			"checked":    false,
			"created_by": "m2",
		},
	})

	ls := NewListStore(db)

	lists, err := ls.ListByFamily("f1")
	if err != nil {
		t.Fatalf("list by family: %v", err)
	}
	if len(lists) != 1 || lists[0].ServerID != "l1" || lists[0].Name != "Groceries" {
		t.Fatalf("lists = %+v", lists)
	}

	items, err := ls.ItemsByList("l1")
	if err != nil {
		t.Fatalf("items by list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	// Unchecked items sort first.
	if items[0].Name != "Bread" || items[0].IsChecked {
		t.Errorf("first item = %+v, want unchecked Bread", items[0])
	}
	if !items[1].IsChecked {
		t.Error("second item should be checked")
	}
	if items[1].CheckedByID == nil || *items[1].CheckedByID != "m1" {
		t.Errorf("checked_by_id = %v, want m1", items[1].CheckedByID)
	}

	count, err := ls.CountUnchecked("l1")
	if err != nil {
		t.Fatalf("count unchecked: %v", err)
	}
	if count != 1 {
		t.Errorf("unchecked = %d, want 1", count)
	}
}

func TestListStoreGetMissing(t *testing.T) {
	db, _ := setupTestDB(t)
	ls := NewListStore(db)

	l, err := ls.GetByServerID("nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if l != nil {
		t.Errorf("list = %+v, want nil", l)
	}
}

func TestFamilyMemberStoreReadsSyncedRows(t *testing.T) {
	db, c := setupTestDB(t)

	mustUpsert(t, c, cache.TableFamilyMembers, remote.Record{
		ID:      "m1",
		Created: "2024-06-15T10:30:00.000Z",
		Updated: "2024-06-15T10:30:00.000Z",
		Fields: map[string]any{
			"family":           "f1",
			"user":             "u1",
			"name":             "Alice",
			"role":             "parent",
			"location_sharing": true,
			"last_lat":         47.6,
			"last_lon":         -122.3,
			"last_location_at": "2024-06-15T10:30:00.000Z",
			"settings":         map[string]any{"units": "metric"},
		},
	})

	ms := NewFamilyMemberStore(db)
	m, err := ms.GetByServerID("m1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil {
		t.Fatal("member not found")
	}
	if m.FamilyID != "f1" || m.UserID != "u1" {
		t.Errorf("relations = %q/%q, want f1/u1", m.FamilyID, m.UserID)
	}
	if !m.LocationSharing {
		t.Error("location_sharing should be true")
	}
	if m.LastLat == nil || *m.LastLat != 47.6 {
		t.Errorf("last_lat = %v, want 47.6", m.LastLat)
	}
	if m.LastLocationAt == 0 {
		t.Error("last_location_at should be a timestamp")
	}
	if got := m.ParsedSettings(); got["units"] != "metric" {
		t.Errorf("settings = %v", got)
	}
}

func TestGeofenceStoreReadsSyncedRows(t *testing.T) {
	db, c := setupTestDB(t)

	mustUpsert(t, c, cache.TableGeofences, remote.Record{
		ID: "g1",
		Fields: map[string]any{
			"family":          "f1",
			"name":            "Home",
			"lat":             47.6,
			"lon":             -122.3,
			"radius_m":        150.0,
			"watch_member":    "m1",
			"notify_members":  []any{"m2", "m3"},
			"notify_on_enter": true,
			"notify_on_exit":  false,
			"created_by":      "m2",
		},
	})

	gs := NewGeofenceStore(db)
	fences, err := gs.ListByFamily("f1")
	if err != nil {
		t.Fatalf("list geofences: %v", err)
	}
	if len(fences) != 1 {
		t.Fatalf("fences = %d, want 1", len(fences))
	}
	g := fences[0]
	if g.WatchMemberID == nil || *g.WatchMemberID != "m1" {
		t.Errorf("watch_member_id = %v, want m1", g.WatchMemberID)
	}
	ids := g.ParsedNotifyMemberIDs()
	if len(ids) != 2 || ids[0] != "m2" {
		t.Errorf("notify ids = %v, want [m2 m3]", ids)
	}
	if !g.NotifyOnEnter || g.NotifyOnExit {
		t.Errorf("notify flags = %v/%v, want true/false", g.NotifyOnEnter, g.NotifyOnExit)
	}
}
