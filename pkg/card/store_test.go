package card

import (
	"fmt"
	"testing"
)

func mkCards(ids ...string) []Card {
	cards := make([]Card, len(ids))
	for i, id := range ids {
		cards[i] = Card{ID: id, Title: "Post " + id}
	}
	return cards
}

func TestStoreAppendPreservesOrder(t *testing.T) {
	s := NewStore()

	s.Append(mkCards("a", "b", "c")...)
	s.Append(mkCards("d", "e")...)

	got := s.IDs()
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("Len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStoreAppendDropsDuplicates(t *testing.T) {
	s := NewStore(mkCards("a", "b")...)

	added := s.Append(mkCards("b", "c", "a", "d")...)

	if len(added) != 2 {
		t.Fatalf("added %d cards, want 2", len(added))
	}
	if added[0].ID != "c" || added[1].ID != "d" {
		t.Errorf("added = [%s %s], want [c d]", added[0].ID, added[1].ID)
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}

func TestStoreAppendSkipsEmptyID(t *testing.T) {
	s := NewStore()
	added := s.Append(Card{Title: "no identity"}, Card{ID: "a"})
	if len(added) != 1 || added[0].ID != "a" {
		t.Errorf("added = %v, want just card a", added)
	}
}

func TestStoreReplace(t *testing.T) {
	s := NewStore(mkCards("a", "b", "c")...)

	s.Replace(mkCards("x", "y"))

	got := s.IDs()
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("IDs = %v, want [x y]", got)
	}
	if s.Contains("a") {
		t.Error("replaced card should be gone")
	}
}

func TestStoreReplaceDropsDuplicateInput(t *testing.T) {
	s := NewStore()
	s.Replace(mkCards("x", "x", "y"))
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestStoreGet(t *testing.T) {
	s := NewStore(Card{ID: "a", Title: "Alpha"})

	c, ok := s.Get("a")
	if !ok {
		t.Fatal("Get(a) should find the card")
	}
	if c.Title != "Alpha" {
		t.Errorf("Title = %q, want Alpha", c.Title)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) should not find a card")
	}
}

func TestStoreCardsReturnsCopy(t *testing.T) {
	s := NewStore(mkCards("a", "b")...)

	cards := s.Cards()
	cards[0].ID = "mutated"

	if got, _ := s.Get("a"); got.ID != "a" {
		t.Error("mutating the returned slice should not affect the store")
	}
}

func TestSnapshotSurvivesMutation(t *testing.T) {
	s := NewStore(mkCards("a", "b", "c")...)
	snap := s.Snapshot()

	// Mutate the store heavily after the snapshot.
	s.Replace(mkCards("x"))
	s.Append(mkCards("y", "z")...)
	s.Clear()

	if snap.Len() != 3 {
		t.Fatalf("snapshot Len = %d, want 3", snap.Len())
	}

	s.Restore(snap)
	got := s.IDs()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("restored IDs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSnapshotCardsReturnsCopy(t *testing.T) {
	s := NewStore(mkCards("a")...)
	snap := s.Snapshot()

	cards := snap.Cards()
	cards[0].ID = "mutated"

	if snap.Cards()[0].ID != "a" {
		t.Error("snapshot should be immune to mutation of returned slices")
	}
}

func TestStoreConcurrentAppend(t *testing.T) {
	s := NewStore()
	done := make(chan struct{})

	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				s.Append(Card{ID: fmt.Sprintf("g%d-c%d", g, i)})
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	if s.Len() != 8*50 {
		t.Errorf("Len = %d, want %d", s.Len(), 8*50)
	}
}
