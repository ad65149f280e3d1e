package card

import (
	"sync"
)

// Store is the ordered, identity-unique collection of cards currently
// on the board.
//
// Order is insertion order. Append drops cards whose identity is already
// present, so replaying a fetched page is harmless. Replace swaps the
// whole visible set, which is how category switches work.
//
// A Store is safe for concurrent use. All accessors return copies;
// callers never observe internal slices.
type Store struct {
	mu    sync.RWMutex
	cards []Card
	byID  map[string]int
}

// NewStore creates a store seeded with the given cards.
// Duplicate identities in the seed are dropped, keeping the first.
func NewStore(cards ...Card) *Store {
	s := &Store{byID: make(map[string]int)}
	s.Append(cards...)
	return s
}

// Append adds cards in order, skipping any whose identity is already
// present. It returns the cards actually added, in their original order.
func (s *Store) Append(cards ...Card) []Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []Card
	for _, c := range cards {
		if c.ID == "" {
			continue
		}
		if _, dup := s.byID[c.ID]; dup {
			continue
		}
		s.byID[c.ID] = len(s.cards)
		s.cards = append(s.cards, c)
		added = append(added, c)
	}
	return added
}

// Replace swaps the visible set for the given cards, preserving their
// order and dropping duplicate identities within the input.
func (s *Store) Replace(cards []Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(cards)
}

// Clear removes all cards.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(nil)
}

// reset rebuilds the internal state from cards. Caller holds the lock.
func (s *Store) reset(cards []Card) {
	s.cards = s.cards[:0]
	s.byID = make(map[string]int, len(cards))
	for _, c := range cards {
		if c.ID == "" {
			continue
		}
		if _, dup := s.byID[c.ID]; dup {
			continue
		}
		s.byID[c.ID] = len(s.cards)
		s.cards = append(s.cards, c)
	}
}

// Cards returns the visible set in order. The returned slice is a copy.
func (s *Store) Cards() []Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// Get returns the card with the given identity.
func (s *Store) Get(id string) (Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Card{}, false
	}
	return s.cards[i], true
}

// Contains reports whether a card with the given identity is present.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of cards.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

// IDs returns the identities of the visible set in order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.cards))
	for i, c := range s.cards {
		ids[i] = c.ID
	}
	return ids
}

// Snapshot captures the current visible set as an independent copy.
// The snapshot never changes afterwards, no matter what happens to the
// store. The category filter takes one at initial load so "all" can
// restore the original page.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{cards: s.Cards()}
}

// Restore replaces the visible set with the snapshot's contents.
func (s *Store) Restore(snap Snapshot) {
	s.Replace(snap.Cards())
}

// Snapshot is an immutable copy of a store's visible set.
type Snapshot struct {
	cards []Card
}

// Cards returns the snapshot's contents in order. The returned slice is
// a copy, so the snapshot stays intact even if the caller mutates it.
func (sn Snapshot) Cards() []Card {
	out := make([]Card, len(sn.cards))
	copy(out, sn.cards)
	return out
}

// Len returns the number of cards in the snapshot.
func (sn Snapshot) Len() int {
	return len(sn.cards)
}
