package id

import "testing"

func TestNanoIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	g := NewNanoIDGenerator()
	a, err := g.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	b, _ := g.NewID()
	if len(a) != defaultLength || a == b {
		t.Fatalf("unexpected ids: %q %q", a, b)
	}
}

func TestSequence_NewID(t *testing.T) {
	t.Parallel()

	s := NewSequence("mix-")
	first, _ := s.NewID()
	second, _ := s.NewID()
	if first != "mix-1" || second != "mix-2" {
		t.Fatalf("unexpected sequence: %s %s", first, second)
	}
}
