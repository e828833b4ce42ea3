package buildinfo

import (
	"strings"
	"testing"
)

func TestGetKeepsLinkedValues(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	t.Cleanup(func() { Version = old })

	if got := Get().Version; got != "v9.9.9" {
		t.Errorf("Get().Version = %q, want the linked value", got)
	}
	if got := Template(); !strings.Contains(got, "version v9.9.9") {
		t.Errorf("Template() = %q", got)
	}
}

func TestInfoString(t *testing.T) {
	got := Info{Version: "v1", Commit: "abc", Date: "today"}.String()
	want := "version: v1\ncommit: abc\nbuilt: today"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
