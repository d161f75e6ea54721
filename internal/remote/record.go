package remote

import "encoding/json"

// Push event actions emitted by the realtime channel.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Record is one JSON record from the remote store. Store metadata is split
// out of the entity fields during decoding so downstream consumers never
// have to filter it themselves.
type Record struct {
	ID             string
	Created        string
	Updated        string
	CollectionID   string
	CollectionName string
	Expand         map[string]any

	// Fields holds every remaining entity field, values as decoded JSON
	// (string, float64, bool, nil, map[string]any, []any).
	Fields map[string]any
}

// Event is one push notification from the realtime channel.
type Event struct {
	Action string `json:"action"`
	Record Record `json:"record"`
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) {
		if v, ok := raw[key]; ok {
			// Malformed metadata is left zero; entity fields are unaffected.
			_ = json.Unmarshal(v, dst)
			delete(raw, key)
		}
	}
	take("id", &r.ID)
	take("created", &r.Created)
	take("updated", &r.Updated)
	take("collectionId", &r.CollectionID)
	take("collectionName", &r.CollectionName)
	take("expand", &r.Expand)

	r.Fields = make(map[string]any, len(raw))
	for key, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		r.Fields[key] = val
	}
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+6)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	out["created"] = r.Created
	out["updated"] = r.Updated
	if r.CollectionID != "" {
		out["collectionId"] = r.CollectionID
	}
	if r.CollectionName != "" {
		out["collectionName"] = r.CollectionName
	}
	if r.Expand != nil {
		out["expand"] = r.Expand
	}
	return json.Marshal(out)
}
