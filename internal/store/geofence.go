package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

// GeofenceStore reads cached geofences.
type GeofenceStore struct {
	db *sql.DB
}

func NewGeofenceStore(db *sql.DB) *GeofenceStore {
	return &GeofenceStore{db: db}
}

const geofenceCols = `id, server_id, created_at, updated_at, family_id, name, lat, lon, radius_m, watch_member_id, notify_member_ids, notify_on_enter, notify_on_exit, created_by_id`

func scanGeofence(scanner interface{ Scan(...any) error }) (*model.Geofence, error) {
	var g model.Geofence
	var watchMember, notifyIDs sql.NullString
	var onEnter, onExit int

	err := scanner.Scan(
		&g.ID, &g.ServerID, &g.CreatedAt, &g.UpdatedAt,
		&g.FamilyID, &g.Name, &g.Lat, &g.Lon, &g.RadiusM,
		&watchMember, &notifyIDs, &onEnter, &onExit, &g.CreatedByID,
	)
	if err != nil {
		return nil, err
	}

	g.NotifyOnEnter = onEnter != 0
	g.NotifyOnExit = onExit != 0
	if watchMember.Valid {
		g.WatchMemberID = &watchMember.String
	}
	if notifyIDs.Valid {
		g.NotifyMemberIDs = &notifyIDs.String
	}
	return &g, nil
}

func (s *GeofenceStore) ListByFamily(familyID string) ([]model.Geofence, error) {
	rows, err := s.db.Query(
		`SELECT `+geofenceCols+` FROM geofences WHERE family_id = ? ORDER BY name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}
	defer rows.Close()

	var fences []model.Geofence
	for rows.Next() {
		g, err := scanGeofence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan geofence: %w", err)
		}
		fences = append(fences, *g)
	}
	return fences, rows.Err()
}

func (s *GeofenceStore) GetByServerID(serverID string) (*model.Geofence, error) {
	row := s.db.QueryRow(`SELECT `+geofenceCols+` FROM geofences WHERE server_id = ?`, serverID)
	g, err := scanGeofence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get geofence: %w", err)
	}
	return g, nil
}
