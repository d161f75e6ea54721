package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

// ListStore reads cached lists and list items. The cache is written only
// by the sync layer; these accessors are the read surface the UI uses.
type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

const listCols = `id, server_id, created_at, updated_at, family_id, name, kind, icon, archived, created_by_id`

func scanList(scanner interface{ Scan(...any) error }) (*model.List, error) {
	var l model.List
	var icon sql.NullString
	var archived int

	err := scanner.Scan(
		&l.ID, &l.ServerID, &l.CreatedAt, &l.UpdatedAt,
		&l.FamilyID, &l.Name, &l.Kind, &icon, &archived, &l.CreatedByID,
	)
	if err != nil {
		return nil, err
	}

	l.Archived = archived != 0
	if icon.Valid {
		l.Icon = &icon.String
	}
	return &l, nil
}

func (s *ListStore) ListByFamily(familyID string) ([]model.List, error) {
	rows, err := s.db.Query(
		`SELECT `+listCols+` FROM lists WHERE family_id = ? AND archived = 0 ORDER BY name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ListStore) GetByServerID(serverID string) (*model.List, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE server_id = ?`, serverID)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// --- Item methods ---

const itemCols = `id, server_id, created_at, updated_at, list_id, name, quantity, notes, is_checked, checked_by_id, checked_at, assigned_to_id, created_by_id, sort_order`

func scanItem(scanner interface{ Scan(...any) error }) (*model.ListItem, error) {
	var item model.ListItem
	var quantity, notes, checkedBy, assignedTo sql.NullString
	var checked int

	err := scanner.Scan(
		&item.ID, &item.ServerID, &item.CreatedAt, &item.UpdatedAt,
		&item.ListID, &item.Name, &quantity, &notes, &checked,
		&checkedBy, &item.CheckedAt, &assignedTo, &item.CreatedByID, &item.SortOrder,
	)
	if err != nil {
		return nil, err
	}

	item.IsChecked = checked != 0
	if quantity.Valid {
		item.Quantity = &quantity.String
	}
	if notes.Valid {
		item.Notes = &notes.String
	}
	if checkedBy.Valid {
		item.CheckedByID = &checkedBy.String
	}
	if assignedTo.Valid {
		item.AssignedToID = &assignedTo.String
	}
	return &item, nil
}

func (s *ListStore) ItemsByList(listID string) ([]model.ListItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM list_items WHERE list_id = ? ORDER BY is_checked ASC, sort_order ASC, created_at ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ListItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ListStore) GetItemByServerID(serverID string) (*model.ListItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM list_items WHERE server_id = ?`, serverID)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ListStore) CountUnchecked(listID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM list_items WHERE list_id = ? AND is_checked = 0`,
		listID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unchecked: %w", err)
	}
	return count, nil
}
