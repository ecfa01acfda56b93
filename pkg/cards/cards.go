package cards

import (
	"fmt"
	"math/rand/v2"
)

// Suit symbols as they appear on the wire.
const (
	SuitClubs    = "♧"
	SuitDiamonds = "♢"
	SuitHearts   = "♡"
	SuitSpades   = "♤"
)

const (
	// NumRanks is the number of ranks per suit.
	NumRanks = 9
	// DeckSize is the total number of cards in a full deck.
	DeckSize = NumRanks * 4
	// HandSize is the number of cards dealt to each player at the start.
	HandSize = 4
)

// Suits lists the four suits in deck construction order.
var Suits = []string{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// Card is a single playing card. The JSON field names are fixed by the
// client protocol: rank is carried as "name".
type Card struct {
	Rank int    `json:"name"`
	Suit string `json:"suit"`
}

// Matches reports whether c can be played on top of other,
// i.e. they share a rank or a suit.
func (c Card) Matches(other Card) bool {
	return c.Rank == other.Rank || c.Suit == other.Suit
}

func (c Card) String() string {
	return fmt.Sprintf("%d%s", c.Rank, c.Suit)
}

// Deck is an ordered pile of cards. Cards are drawn from the end.
type Deck []Card

// NewDeck returns a full, unshuffled deck: every (rank, suit) pair
// exactly once, ranks 0 through 8 within each suit.
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, suit := range Suits {
		for rank := 0; rank < NumRanks; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Shuffle permutes the deck in place using the Fisher-Yates algorithm
// over the given source. Each session owns its own source, so shuffles
// are independent across sessions and reproducible under a seeded
// source in tests.
func (d Deck) Shuffle(rng *rand.Rand) {
	for i := len(d) - 1; i >= 1; i-- {
		j := rng.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// Draw removes and returns the top (last) card of the deck.
func (d *Deck) Draw() (Card, bool) {
	deck := *d
	if len(deck) == 0 {
		return Card{}, false
	}
	card := deck[len(deck)-1]
	*d = deck[:len(deck)-1]
	return card, true
}

// Deal draws the opening layout from the deck: one card for the discard
// top, then HandSize cards for player 1, then HandSize cards for player 2.
// The draw order is fixed so that a seeded shuffle deals deterministically.
func Deal(deck Deck) (discardTop Card, hand1, hand2 []Card, rest Deck, err error) {
	if len(deck) < 1+2*HandSize {
		return Card{}, nil, nil, nil, fmt.Errorf("deck has %d cards, need at least %d to deal", len(deck), 1+2*HandSize)
	}
	rest = deck
	discardTop, _ = rest.Draw()
	hand1 = make([]Card, 0, HandSize)
	for i := 0; i < HandSize; i++ {
		card, _ := rest.Draw()
		hand1 = append(hand1, card)
	}
	hand2 = make([]Card, 0, HandSize)
	for i := 0; i < HandSize; i++ {
		card, _ := rest.Draw()
		hand2 = append(hand2, card)
	}
	return discardTop, hand1, hand2, rest, nil
}
