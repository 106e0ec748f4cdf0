package visitor

import "testing"

func TestIDDeterministic(t *testing.T) {
	a := ID("203.0.113.7", "Mozilla/5.0")
	b := ID("203.0.113.7", "Mozilla/5.0")

	if a != b {
		t.Fatalf("expected identical ids, got %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 char id, got %d chars", len(a))
	}
}

func TestIDSeparatesInputs(t *testing.T) {
	// The separator keeps (ip="ab", ua="c") distinct from (ip="a", ua="bc").
	if ID("ab", "c") == ID("a", "bc") {
		t.Fatal("expected distinct ids for shifted inputs")
	}
}

func TestIDEmptyInputs(t *testing.T) {
	id := ID("", "")
	if len(id) != 16 {
		t.Fatalf("expected degenerate hash of 16 chars, got %q", id)
	}
}

func TestSessionID(t *testing.T) {
	if got := SessionID(" existing-session "); got != "existing-session" {
		t.Fatalf("expected provided session id, got %q", got)
	}

	generated := SessionID("")
	if generated == "" {
		t.Fatal("expected generated session id")
	}
	if SessionID("") == generated {
		t.Fatal("expected fresh ids per call")
	}
}
