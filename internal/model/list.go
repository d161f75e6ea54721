package model

type List struct {
	ID        int64  `json:"id"`
	ServerID  string `json:"server_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	FamilyID    string  `json:"family_id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Icon        *string `json:"icon"`
	Archived    bool    `json:"archived"`
	CreatedByID string  `json:"created_by_id"`
}

type ListItem struct {
	ID        int64  `json:"id"`
	ServerID  string `json:"server_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	ListID       string  `json:"list_id"`
	Name         string  `json:"name"`
	Quantity     *string `json:"quantity"`
	Notes        *string `json:"notes"`
	IsChecked    bool    `json:"is_checked"`
	CheckedByID  *string `json:"checked_by_id"`
	CheckedAt    int64   `json:"checked_at"`
	AssignedToID *string `json:"assigned_to_id"`
	CreatedByID  string  `json:"created_by_id"`
	SortOrder    int     `json:"sort_order"`
}
