package selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToggleIdempotence(t *testing.T) {
	base := New(3, 9, 1)
	for _, id := range []int{1, 2, 3, 100} {
		s := New(base.IDs()...)
		before := s.IDs()
		s.Toggle(id)
		s.Toggle(id)
		if diff := cmp.Diff(before, s.IDs()); diff != "" {
			t.Fatalf("double toggle of %d changed the set (-want +got):\n%s", id, diff)
		}
	}
}

func TestToggleReportsState(t *testing.T) {
	var s Set
	if !s.Toggle(5) {
		t.Fatalf("first toggle should select")
	}
	if !s.Contains(5) || s.Len() != 1 {
		t.Fatalf("expected 5 selected")
	}
	if s.Toggle(5) {
		t.Fatalf("second toggle should deselect")
	}
	if s.Contains(5) || s.Len() != 0 {
		t.Fatalf("expected empty set")
	}
}

func TestIDsAreSorted(t *testing.T) {
	s := New(42, 7, 19, 7)
	if diff := cmp.Diff([]int{7, 19, 42}, s.IDs()); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
	if s.Fingerprint() != "7,19,42" {
		t.Fatalf("unexpected fingerprint %q", s.Fingerprint())
	}
}

func TestClearAndRemove(t *testing.T) {
	s := New(1, 2, 3)
	if !s.Remove(2) || s.Remove(2) {
		t.Fatalf("Remove should report prior membership")
	}
	if s.Fingerprint() != "1,3" {
		t.Fatalf("unexpected fingerprint after removal %q", s.Fingerprint())
	}
	s.Clear()
	if s.Len() != 0 || s.Fingerprint() != "" {
		t.Fatalf("expected empty set after Clear")
	}
	var zero Set
	zero.Clear()
	if zero.Contains(1) {
		t.Fatalf("zero set should be empty")
	}
}
