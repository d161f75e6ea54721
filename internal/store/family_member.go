package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

// FamilyMemberStore reads cached family members.
type FamilyMemberStore struct {
	db *sql.DB
}

func NewFamilyMemberStore(db *sql.DB) *FamilyMemberStore {
	return &FamilyMemberStore{db: db}
}

const memberCols = `id, server_id, created_at, updated_at, family_id, user_id, name, avatar_url, role, location_sharing, location_sharing_until, last_lat, last_lon, last_location_at, settings`

func scanMember(scanner interface{ Scan(...any) error }) (*model.FamilyMember, error) {
	var m model.FamilyMember
	var avatarURL, settings sql.NullString
	var lastLat, lastLon sql.NullFloat64
	var sharing int

	err := scanner.Scan(
		&m.ID, &m.ServerID, &m.CreatedAt, &m.UpdatedAt,
		&m.FamilyID, &m.UserID, &m.Name, &avatarURL, &m.Role,
		&sharing, &m.LocationSharingUntil, &lastLat, &lastLon, &m.LastLocationAt,
		&settings,
	)
	if err != nil {
		return nil, err
	}

	m.LocationSharing = sharing != 0
	if avatarURL.Valid {
		m.AvatarURL = &avatarURL.String
	}
	if lastLat.Valid {
		m.LastLat = &lastLat.Float64
	}
	if lastLon.Valid {
		m.LastLon = &lastLon.Float64
	}
	if settings.Valid {
		m.Settings = &settings.String
	}
	return &m, nil
}

func (s *FamilyMemberStore) ListByFamily(familyID string) ([]model.FamilyMember, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM family_members WHERE family_id = ? ORDER BY name ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyMemberStore) GetByServerID(serverID string) (*model.FamilyMember, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM family_members WHERE server_id = ?`, serverID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}
