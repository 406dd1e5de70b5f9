package instance

import "testing"

func TestGetIDPrefersDyno(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("HOSTNAME", "pod-abc")
	if got := GetID(); got != "web.1" {
		t.Fatalf("expected dyno id, got %q", got)
	}

	t.Setenv("DYNO", "")
	if got := GetID(); got != "pod-abc" {
		t.Fatalf("expected hostname, got %q", got)
	}

	t.Setenv("HOSTNAME", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected local fallback, got %q", got)
	}
}
