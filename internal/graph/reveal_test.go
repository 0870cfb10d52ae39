package graph

import "testing"

func TestNewRevealState(t *testing.T) {
	tests := []struct {
		total, want int
	}{
		{0, 0},
		{1, 1},
		{3, 3},
		{10, 3},
	}
	for _, tt := range tests {
		s := NewRevealState(tt.total)
		if s.Revealed != tt.want {
			t.Errorf("NewRevealState(%d).Revealed = %d, want %d", tt.total, s.Revealed, tt.want)
		}
	}
}

func TestSelectRevealsOne(t *testing.T) {
	s := NewRevealState(5)
	next := s.Select("node-a")

	if next.ActiveNode != "node-a" {
		t.Errorf("expected active node set, got %q", next.ActiveNode)
	}
	if next.Revealed != 4 {
		t.Errorf("expected revealed 4, got %d", next.Revealed)
	}
	// Original state untouched (value semantics).
	if s.Revealed != 3 || s.ActiveNode != "" {
		t.Errorf("expected original state unchanged, got %+v", s)
	}
}

func TestSelectNeverExceedsTotal(t *testing.T) {
	s := NewRevealState(4)
	for i := 0; i < 10; i++ {
		s = s.Select("node-x")
		if s.Revealed > s.Total {
			t.Fatalf("revealed %d exceeds total %d", s.Revealed, s.Total)
		}
	}
	if s.Revealed != 4 {
		t.Errorf("expected revealed saturated at 4, got %d", s.Revealed)
	}
}

func TestRevealAll(t *testing.T) {
	s := NewRevealState(8)
	s = s.RevealAll()
	if s.Revealed != 8 {
		t.Errorf("expected all 8 revealed, got %d", s.Revealed)
	}
}

func TestResetFromAnyState(t *testing.T) {
	s := NewRevealState(8).RevealAll().Select("node-b")
	s = s.Reset()

	if s.Revealed != 3 {
		t.Errorf("expected reset to min(3,total)=3, got %d", s.Revealed)
	}
	if s.ActiveNode != "" {
		t.Errorf("expected no active node after reset, got %q", s.ActiveNode)
	}

	small := NewRevealState(2).RevealAll().Reset()
	if small.Revealed != 2 {
		t.Errorf("expected reset to 2 for total 2, got %d", small.Revealed)
	}
}
