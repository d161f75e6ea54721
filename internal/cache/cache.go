package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dukerupert/hearth/internal/remote"
)

// Cache is the local mirror of the remote record store. All three write
// paths (pull reconciliation, realtime events, direct pass-through writes)
// converge on Upsert and DeleteByServerID, so they share one write
// contract: rows are keyed by the remote record id, created on first
// sight, updated in place after, and only ever removed when the remote
// side no longer has them.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger

	mu      sync.Mutex
	columns map[Table]map[string]bool
}

// New creates a Cache over an open local database. If logger is nil the
// default logger is used.
func New(db *sql.DB, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		db:      db,
		logger:  logger,
		columns: make(map[Table]map[string]bool),
	}
}

// Upsert writes the remote record into the table, creating the local row
// if its server_id has not been seen before or updating it in place
// otherwise. Idempotent: applying the same record twice yields the same
// end state. Columns the local schema does not declare are skipped, so a
// new remote field never breaks sync.
func (c *Cache) Upsert(ctx context.Context, table Table, rec remote.Record) error {
	row, err := ToLocalRow(table, rec)
	if err != nil {
		return err
	}
	cols, vals, err := c.storableColumns(table, row)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var localID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM `+string(table)+` WHERE server_id = ?`, rec.ID,
	).Scan(&localID)
	switch {
	case err == sql.ErrNoRows:
		if err := insertRow(ctx, tx, table, cols, vals); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("lookup %s server_id %s: %w", table, rec.ID, err)
	default:
		if err := updateRow(ctx, tx, table, localID, cols, vals); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// DeleteByServerID permanently removes the local row tracking the given
// remote record. Removing an absent row is a no-op, not an error: deletes
// race with pulls and must be safe in either order.
func (c *Cache) DeleteByServerID(ctx context.Context, table Table, serverID string) error {
	if _, ok := tableSpecs[table]; !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+string(table)+` WHERE server_id = ?`, serverID,
	); err != nil {
		return fmt.Errorf("delete %s server_id %s: %w", table, serverID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func insertRow(ctx context.Context, tx *sql.Tx, table Table, cols []string, vals []any) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	_, err := tx.ExecContext(ctx,
		`INSERT INTO `+string(table)+` (`+strings.Join(cols, ", ")+`) VALUES (`+placeholders+`)`,
		vals...,
	)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func updateRow(ctx context.Context, tx *sql.Tx, table Table, localID int64, cols []string, vals []any) error {
	assigns := make([]string, len(cols))
	for i, col := range cols {
		assigns[i] = col + " = ?"
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE `+string(table)+` SET `+strings.Join(assigns, ", ")+` WHERE id = ?`,
		append(vals, localID)...,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// storableColumns resolves the table's schema and filters a mapped row
// down to declared columns. Must be called with no transaction open: the
// schema read may land on a second pool connection, which for an
// in-memory database is a different database entirely.
func (c *Cache) storableColumns(table Table, row map[string]any) ([]string, []any, error) {
	known, err := c.tableColumns(table)
	if err != nil {
		return nil, nil, err
	}
	cols, vals := splitRow(c.logger, table, known, row)
	return cols, vals, nil
}

// splitRow filters a mapped row down to columns the local table declares,
// in deterministic order. Unknown columns are dropped with a debug log;
// they come from remote fields newer than the local schema.
func splitRow(logger *slog.Logger, table Table, known map[string]bool, row map[string]any) ([]string, []any) {
	cols := make([]string, 0, len(row))
	for col := range row {
		if known[col] {
			cols = append(cols, col)
		} else {
			logger.Debug("skipping column not in local schema", "table", table, "column", col)
		}
	}
	sort.Strings(cols)

	vals := make([]any, len(cols))
	for i, col := range cols {
		vals[i] = row[col]
	}
	return cols, vals
}

// tableColumns returns the set of declared columns for a table, reading
// the schema once and caching it.
func (c *Cache) tableColumns(table Table) (map[string]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cols, ok := c.columns[table]; ok {
		return cols, nil
	}

	rows, err := c.db.Query(`SELECT name FROM pragma_table_info(?)`, string(table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s does not exist locally", table)
	}
	// The local primary key is never written by sync.
	delete(cols, "id")

	c.columns[table] = cols
	return cols, nil
}
