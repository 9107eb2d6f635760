package chat

import "testing"

func TestRegistryAdminSlot(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.CurrentAdmin(); ok {
		t.Fatal("fresh registry has an admin")
	}

	r.SetAdmin("a1")
	if id, ok := r.CurrentAdmin(); !ok || id != "a1" {
		t.Fatalf("current admin = %q, %v", id, ok)
	}

	// A new claim displaces the old admin.
	r.SetAdmin("a2")
	if id, _ := r.CurrentAdmin(); id != "a2" {
		t.Fatalf("current admin = %q, want a2", id)
	}

	// Stale clear for the displaced admin must not touch the slot.
	if r.ClearAdmin("a1") {
		t.Fatal("stale clear succeeded")
	}
	if id, ok := r.CurrentAdmin(); !ok || id != "a2" {
		t.Fatalf("slot lost after stale clear: %q, %v", id, ok)
	}

	if !r.ClearAdmin("a2") {
		t.Fatal("clear for current admin failed")
	}
	if _, ok := r.CurrentAdmin(); ok {
		t.Fatal("slot not cleared")
	}
}
