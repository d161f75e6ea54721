package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/remote"
)

// Lister fetches the full record list of one remote collection.
// *remote.Client satisfies it.
type Lister interface {
	ListRecords(ctx context.Context, collection, sort string) ([]remote.Record, error)
}

// PullAll re-derives local state from the remote store: every synced table
// is fetched in full, freshest records first, and reconciled against its
// local rows inside one transaction. Local rows whose server_id is absent
// from the fetched set are permanently removed — that is how deletions
// missed while disconnected propagate. Because absence means deletion, the
// fetch must always be the full unfiltered collection.
//
// Tables are processed sequentially, never in parallel, so a failure in
// one table cannot leave another mid-write and only one table scan is in
// flight at a time. A failed table is logged and skipped; the remaining
// tables still reconcile. PullAll never fails as a whole.
func (c *Cache) PullAll(ctx context.Context, src Lister) {
	for _, table := range SyncOrder {
		if err := c.pullTable(ctx, src, table); err != nil {
			c.logger.Error("pull failed for table", "table", table, "error", err)
		}
	}
}

func (c *Cache) pullTable(ctx context.Context, src Lister, table Table) error {
	records, err := src.ListRecords(ctx, CollectionFor(table), "-updated")
	if err != nil {
		return fmt.Errorf("fetch %s: %w", CollectionFor(table), err)
	}

	// Resolve the schema before the transaction opens. A query issued while
	// the transaction pins its pool connection runs on a second connection,
	// and for an in-memory database that second connection is a separate
	// empty database with no tables.
	known, err := c.tableColumns(table)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := localIDsByServerID(ctx, tx, table)
	if err != nil {
		return err
	}

	received := make(map[string]bool, len(records))
	for _, rec := range records {
		row, err := ToLocalRow(table, rec)
		if err != nil {
			return err
		}
		cols, vals := splitRow(c.logger, table, known, row)

		if localID, ok := existing[rec.ID]; ok {
			err = updateRow(ctx, tx, table, localID, cols, vals)
		} else {
			err = insertRow(ctx, tx, table, cols, vals)
		}
		if err != nil {
			return err
		}
		received[rec.ID] = true
	}

	for serverID, localID := range existing {
		if received[serverID] {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+string(table)+` WHERE id = ?`, localID,
		); err != nil {
			return fmt.Errorf("delete vanished row %s/%s: %w", table, serverID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pull: %w", err)
	}

	c.logger.Debug("table reconciled", "table", table, "remote", len(records), "had", len(existing))
	return nil
}

func localIDsByServerID(ctx context.Context, tx *sql.Tx, table Table) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, server_id FROM `+string(table))
	if err != nil {
		return nil, fmt.Errorf("list local rows %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id int64
		var serverID string
		if err := rows.Scan(&id, &serverID); err != nil {
			return nil, fmt.Errorf("scan local row: %w", err)
		}
		out[serverID] = id
	}
	return out, rows.Err()
}
