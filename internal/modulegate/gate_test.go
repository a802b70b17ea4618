package modulegate

import "testing"

func TestEnabled_EmptyListEnablesEverything(t *testing.T) {
	g := NewGate("")

	if !g.Enabled("user_management") || !g.Enabled("file_management") {
		t.Fatal("empty toggle list should enable every module")
	}
}

func TestEnabled_ExplicitToggles(t *testing.T) {
	g := NewGate("user_management=on,file_management=off")

	if !g.Enabled("user_management") {
		t.Fatal("user_management should be enabled")
	}
	if g.Enabled("file_management") {
		t.Fatal("file_management should be disabled")
	}
	if g.Enabled("billing") {
		t.Fatal("unlisted modules are disabled when a toggle list is present")
	}
}

func TestEnabled_BareNamesAndWhitespace(t *testing.T) {
	g := NewGate(" user_management , File_Management=TRUE ,bad=maybe")

	if !g.Enabled("user_management") {
		t.Fatal("bare module name should count as enabled")
	}
	if !g.Enabled("FILE_MANAGEMENT") {
		t.Fatal("toggle matching should be case-insensitive")
	}
	if g.Enabled("bad") {
		t.Fatal("unrecognized toggle values should not enable a module")
	}
}

func TestSnapshot(t *testing.T) {
	g := NewGate("user_management=on")

	snap := g.Snapshot([]string{"user_management", "file_management"})
	if !snap["user_management"] || snap["file_management"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}

func TestNilGateIsOpen(t *testing.T) {
	var g *Gate
	if !g.Enabled("anything") {
		t.Fatal("nil gate should behave as fully open")
	}
}
