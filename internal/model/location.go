package model

// LocationPoint is one synced location-history sample for a member.
type LocationPoint struct {
	ID        int64  `json:"id"`
	ServerID  string `json:"server_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	MemberID  string   `json:"member_id"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Accuracy  *float64 `json:"accuracy"`
	Battery   *float64 `json:"battery"`
	Timestamp int64    `json:"timestamp"`
}
