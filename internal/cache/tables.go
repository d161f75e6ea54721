package cache

// Table identifies one synced local table.
type Table string

const (
	TableFamilies        Table = "families"
	TableFamilyMembers   Table = "family_members"
	TableLists           Table = "lists"
	TableListItems       Table = "list_items"
	TableLocationHistory Table = "location_history"
	TableGeofences       Table = "geofences"
	TableRecipes         Table = "recipes"
)

// SyncOrder is the fixed order tables are pulled and subscribed in.
// Referenced entities come before their referents, though nothing depends
// on it: relations are stored as remote record ids, never local row ids.
var SyncOrder = []Table{
	TableFamilies,
	TableFamilyMembers,
	TableLists,
	TableListItems,
	TableLocationHistory,
	TableGeofences,
	TableRecipes,
}

// tableSpec ties a local table to its remote collection and the renames
// applied to remote field names. Fields not listed map to the identical
// local column name.
type tableSpec struct {
	collection string
	overrides  map[string]string
}

var tableSpecs = map[Table]tableSpec{
	TableFamilies: {
		collection: "families",
		overrides: map[string]string{
			"created_by": "created_by_id",
		},
	},
	TableFamilyMembers: {
		collection: "family_members",
		overrides: map[string]string{
			"family": "family_id",
			"user":   "user_id",
		},
	},
	TableLists: {
		collection: "lists",
		overrides: map[string]string{
			"family":     "family_id",
			"created_by": "created_by_id",
		},
	},
	TableListItems: {
		collection: "list_items",
		overrides: map[string]string{
			"list":        "list_id",
			"checked":     "is_checked",
			"checked_by":  "checked_by_id",
			"created_by":  "created_by_id",
			"assigned_to": "assigned_to_id",
		},
	},
	TableLocationHistory: {
		collection: "location_history",
		overrides: map[string]string{
			"member": "member_id",
		},
	},
	TableGeofences: {
		collection: "geofences",
		overrides: map[string]string{
			"family":         "family_id",
			"created_by":     "created_by_id",
			"watch_member":   "watch_member_id",
			"notify_members": "notify_member_ids",
		},
	},
	TableRecipes: {
		collection: "recipes",
		overrides: map[string]string{
			"family":     "family_id",
			"created_by": "created_by_id",
		},
	},
}

// CollectionFor returns the remote collection backing a table, or "" for
// an unknown table.
func CollectionFor(t Table) string {
	return tableSpecs[t].collection
}
