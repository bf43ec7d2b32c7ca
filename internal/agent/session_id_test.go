package agent

import (
	"regexp"
	"testing"
	"time"
)

var sessionIDPattern = regexp.MustCompile(`^session_\d+_[0-9a-f]{9}$`)

func TestNewSessionIDFormat(t *testing.T) {
	t.Parallel()

	id := NewSessionID()
	if !sessionIDPattern.MatchString(id) {
		t.Fatalf("unexpected session id format: %q", id)
	}
}

func TestNewSessionIDAtEmbedsMillis(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000123)
	id := newSessionIDAt(now)
	if want := "session_1700000000123_"; id[:len(want)] != want {
		t.Fatalf("expected prefix %q, got %q", want, id)
	}
}

func TestNewSessionIDUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = struct{}{}
	}
}
