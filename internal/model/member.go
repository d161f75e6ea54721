package model

import "encoding/json"

type FamilyMember struct {
	ID        int64  `json:"id"`
	ServerID  string `json:"server_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	FamilyID  string  `json:"family_id"`
	UserID    string  `json:"user_id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Role      string  `json:"role"`

	LocationSharing      bool     `json:"location_sharing"`
	LocationSharingUntil int64    `json:"location_sharing_until"`
	LastLat              *float64 `json:"last_lat"`
	LastLon              *float64 `json:"last_lon"`
	LastLocationAt       int64    `json:"last_location_at"`

	// Settings is the raw JSON settings blob as stored; use ParsedSettings.
	Settings *string `json:"settings"`
}

// ParsedSettings decodes the settings JSON column. Malformed or missing
// JSON yields an empty map rather than an error.
func (m *FamilyMember) ParsedSettings() map[string]any {
	if m.Settings == nil || *m.Settings == "" {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(*m.Settings), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
