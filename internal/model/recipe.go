package model

import "encoding/json"

type Recipe struct {
	ID        int64  `json:"id"`
	ServerID  string `json:"server_id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`

	FamilyID    string  `json:"family_id"`
	Title       string  `json:"title"`
	SourceURL   *string `json:"source_url"`
	ImageURL    *string `json:"image_url"`
	Servings    *string `json:"servings"`
	CreatedByID string  `json:"created_by_id"`

	// Ingredients and Instructions are raw JSON arrays as stored.
	Ingredients  *string `json:"ingredients"`
	Instructions *string `json:"instructions"`
}

// ParsedIngredients decodes the ingredients JSON column, falling back to
// an empty slice on malformed JSON.
func (r *Recipe) ParsedIngredients() []string {
	return parseStringList(r.Ingredients)
}

// ParsedInstructions decodes the instructions JSON column, falling back to
// an empty slice on malformed JSON.
func (r *Recipe) ParsedInstructions() []string {
	return parseStringList(r.Instructions)
}

func parseStringList(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(*raw), &out); err != nil {
		return nil
	}
	return out
}
