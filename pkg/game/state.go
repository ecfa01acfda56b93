package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/cardtable/cardtable/pkg/cards"
	"github.com/cardtable/cardtable/pkg/messages"
)

// Slot identifies one of the two participants within a session. Slots
// are fixed for the session's life and reassigned only on restart, in
// connection order.
type Slot int

const (
	// SlotNone marks the absence of a winner (a draw).
	SlotNone Slot = 0
	Slot1    Slot = 1
	Slot2    Slot = 2
)

// Other returns the opposing slot.
func (s Slot) Other() Slot {
	switch s {
	case Slot1:
		return Slot2
	case Slot2:
		return Slot1
	default:
		return SlotNone
	}
}

// State is the authoritative game state. Every card of the 36-card
// universe is in exactly one of Deck, DiscardTop, or one of the two
// hands at all times.
type State struct {
	Deck       cards.Deck
	DiscardTop *cards.Card
	Hands      map[Slot][]cards.Card
	TurnOwner  Slot
}

// NewState builds a fresh game state: a full shuffled deck with one
// card turned up for the discard pile and four cards dealt to each
// hand. Slot 1 moves first.
func NewState(rng *rand.Rand) (*State, error) {
	deck := cards.NewDeck()
	deck.Shuffle(rng)

	discardTop, hand1, hand2, rest, err := cards.Deal(deck)
	if err != nil {
		return nil, fmt.Errorf("failed to deal: %v", err)
	}

	return &State{
		Deck:       rest,
		DiscardTop: &discardTop,
		Hands: map[Slot][]cards.Card{
			Slot1: hand1,
			Slot2: hand2,
		},
		TurnOwner: Slot1,
	}, nil
}

// Score is the sum of ranks in the slot's hand. Lower scores win.
func (s *State) Score(slot Slot) int {
	score := 0
	for _, card := range s.Hands[slot] {
		score += card.Rank
	}
	return score
}

// handContains reports whether the slot's hand holds the exact card.
func (s *State) handContains(slot Slot, card cards.Card) bool {
	for _, held := range s.Hands[slot] {
		if held == card {
			return true
		}
	}
	return false
}

// removeFromHand removes the first exact rank+suit match from the
// slot's hand, preserving the order of the remaining cards.
func (s *State) removeFromHand(slot Slot, card cards.Card) bool {
	hand := s.Hands[slot]
	for i, held := range hand {
		if held == card {
			s.Hands[slot] = append(hand[:i], hand[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns the wire representation of the state. Slices are
// copied so the caller cannot alias the live state.
func (s *State) Snapshot() messages.GameState {
	snapshot := messages.GameState{
		GameCards: append(cards.Deck{}, s.Deck...),
		Player1:   append([]cards.Card{}, s.Hands[Slot1]...),
		Player2:   append([]cards.Card{}, s.Hands[Slot2]...),
		PlayerID:  int(s.TurnOwner),
	}
	if s.DiscardTop != nil {
		top := *s.DiscardTop
		snapshot.LastCard = &top
	}
	return snapshot
}
