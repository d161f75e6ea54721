package model

import "testing"

func strptr(s string) *string { return &s }

func TestGeofenceParsedNotifyMemberIDs(t *testing.T) {
	g := Geofence{NotifyMemberIDs: strptr(`["m1","m2"]`)}
	ids := g.ParsedNotifyMemberIDs()
	if len(ids) != 2 || ids[0] != "m1" || ids[1] != "m2" {
		t.Errorf("ids = %v, want [m1 m2]", ids)
	}
}

func TestGeofenceParsedNotifyMemberIDsMalformed(t *testing.T) {
	g := Geofence{NotifyMemberIDs: strptr(`{broken`)}
	if ids := g.ParsedNotifyMemberIDs(); len(ids) != 0 {
		t.Errorf("ids = %v, want empty on malformed JSON", ids)
	}
}

func TestGeofenceParsedNotifyMemberIDsNil(t *testing.T) {
	var g Geofence
	if ids := g.ParsedNotifyMemberIDs(); len(ids) != 0 {
		t.Errorf("ids = %v, want empty when unset", ids)
	}
}

func TestRecipeParsedIngredients(t *testing.T) {
	r := Recipe{Ingredients: strptr(`["2 eggs","flour"]`)}
	got := r.ParsedIngredients()
	if len(got) != 2 || got[0] != "2 eggs" {
		t.Errorf("ingredients = %v", got)
	}

	r.Ingredients = strptr("not json")
	if got := r.ParsedIngredients(); len(got) != 0 {
		t.Errorf("ingredients = %v, want empty on malformed JSON", got)
	}
}

func TestMemberParsedSettings(t *testing.T) {
	m := FamilyMember{Settings: strptr(`{"units":"metric"}`)}
	if got := m.ParsedSettings(); got["units"] != "metric" {
		t.Errorf("settings = %v", got)
	}

	m.Settings = strptr(`[1,2]`)
	if got := m.ParsedSettings(); len(got) != 0 {
		t.Errorf("settings = %v, want empty on wrong shape", got)
	}

	m.Settings = nil
	if got := m.ParsedSettings(); got == nil || len(got) != 0 {
		t.Errorf("settings = %v, want empty map when unset", got)
	}
}
