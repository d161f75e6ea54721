package model

import "encoding/json"

type Geofence struct {
	ID        int64  `json:"id"`
	ServerID  string `json:"server_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	FamilyID      string  `json:"family_id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	RadiusM       float64 `json:"radius_m"`
	WatchMemberID *string `json:"watch_member_id"`

	// NotifyMemberIDs is the raw JSON array of member server ids.
	NotifyMemberIDs *string `json:"notify_member_ids"`
	NotifyOnEnter   bool    `json:"notify_on_enter"`
	NotifyOnExit    bool    `json:"notify_on_exit"`
	CreatedByID     string  `json:"created_by_id"`
}

// ParsedNotifyMemberIDs decodes the notify_member_ids JSON column.
// Malformed or missing JSON yields an empty slice rather than an error.
func (g *Geofence) ParsedNotifyMemberIDs() []string {
	if g.NotifyMemberIDs == nil || *g.NotifyMemberIDs == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(*g.NotifyMemberIDs), &ids); err != nil {
		return nil
	}
	return ids
}
