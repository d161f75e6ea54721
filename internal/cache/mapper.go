package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/hearth/internal/remote"
)

// Accepted remote timestamp layouts. The record store emits RFC 3339 with
// millisecond precision; the space-separated variant shows up in older
// records.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
}

// ToLocalRow translates a remote record into the local column map for the
// given table. Pure: no I/O, no side effects.
//
// Remote metadata (id, created, updated, collection ids, expand) never
// lands in entity columns: id becomes server_id, created/updated become
// millisecond timestamps, the rest is dropped before this function runs
// (see remote.Record). Field names are renamed per the table's override
// map, date-like string values become millisecond timestamps, and
// object/array values are serialized to JSON strings. Unknown remote
// fields pass through verbatim so schema drift degrades gracefully.
func ToLocalRow(table Table, rec remote.Record) (map[string]any, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	row := make(map[string]any, len(rec.Fields)+3)
	row["server_id"] = rec.ID
	row["created_at"] = parseTimestampMillis(rec.Created)
	row["updated_at"] = parseTimestampMillis(rec.Updated)

	for name, value := range rec.Fields {
		col := name
		if mapped, ok := spec.overrides[name]; ok {
			col = mapped
		}
		row[col] = mapValue(name, value)
	}
	return row, nil
}

func mapValue(name string, value any) any {
	if value == nil {
		return nil
	}
	if s, ok := value.(string); ok && isDateField(name) {
		return parseTimestampMillis(s)
	}
	switch value.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(value)
		if err != nil {
			// Values decoded from JSON always re-encode; guard anyway.
			return nil
		}
		return string(data)
	}
	return value
}

// isDateField reports whether a remote field name is date-typed by
// convention: an _at suffix, the bare name "timestamp", or the one
// outlier "location_sharing_until".
func isDateField(name string) bool {
	return strings.HasSuffix(name, "_at") ||
		name == "timestamp" ||
		name == "location_sharing_until"
}

// parseTimestampMillis converts a remote ISO-8601 timestamp to Unix
// milliseconds. Absent or unparseable values map to 0.
func parseTimestampMillis(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
