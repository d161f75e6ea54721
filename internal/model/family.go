package model

// Family is a synced household. All cross-entity references use the
// remote record id of the referenced entity, never the local row id.
type Family struct {
	ID          int64  `json:"id"`
	ServerID    string `json:"server_id"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
	Name        string `json:"name"`
	InviteCode  string `json:"invite_code"`
	CreatedByID string `json:"created_by_id"`
}
