package cards

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[Card]bool)
	for _, card := range deck {
		assert.False(t, seen[card], "duplicate card %s", card)
		seen[card] = true
		assert.GreaterOrEqual(t, card.Rank, 0)
		assert.Less(t, card.Rank, NumRanks)
		assert.Contains(t, Suits, card.Suit)
	}
}

func TestCardMatches(t *testing.T) {
	tests := []struct {
		name  string
		a     Card
		b     Card
		wants bool
	}{
		{
			name:  "same rank different suit",
			a:     Card{Rank: 3, Suit: SuitClubs},
			b:     Card{Rank: 3, Suit: SuitHearts},
			wants: true,
		},
		{
			name:  "same suit different rank",
			a:     Card{Rank: 0, Suit: SuitSpades},
			b:     Card{Rank: 8, Suit: SuitSpades},
			wants: true,
		},
		{
			name:  "identical card",
			a:     Card{Rank: 5, Suit: SuitDiamonds},
			b:     Card{Rank: 5, Suit: SuitDiamonds},
			wants: true,
		},
		{
			name:  "no match",
			a:     Card{Rank: 2, Suit: SuitClubs},
			b:     Card{Rank: 7, Suit: SuitHearts},
			wants: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, tt.a.Matches(tt.b))
			assert.Equal(t, tt.wants, tt.b.Matches(tt.a))
		})
	}
}

func TestShuffle(t *testing.T) {
	deck := NewDeck()
	deck.Shuffle(rand.New(rand.NewPCG(1, 2)))
	require.Len(t, deck, DeckSize)

	// Same multiset of cards after shuffling.
	seen := make(map[Card]int)
	for _, card := range deck {
		seen[card]++
	}
	for _, card := range NewDeck() {
		assert.Equal(t, 1, seen[card], "card %s", card)
	}

	// Same seed, same permutation.
	other := NewDeck()
	other.Shuffle(rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, deck, other)
}

func TestDraw(t *testing.T) {
	deck := Deck{
		{Rank: 1, Suit: SuitClubs},
		{Rank: 2, Suit: SuitHearts},
	}

	card, ok := deck.Draw()
	require.True(t, ok)
	assert.Equal(t, Card{Rank: 2, Suit: SuitHearts}, card)
	assert.Len(t, deck, 1)

	card, ok = deck.Draw()
	require.True(t, ok)
	assert.Equal(t, Card{Rank: 1, Suit: SuitClubs}, card)
	assert.Empty(t, deck)

	_, ok = deck.Draw()
	assert.False(t, ok)
}

func TestDeal(t *testing.T) {
	deck := NewDeck()
	deck.Shuffle(rand.New(rand.NewPCG(3, 4)))
	before := append(Deck{}, deck...)

	discardTop, hand1, hand2, rest, err := Deal(deck)
	require.NoError(t, err)

	// Draw order is discard first, then player 1's hand, then player 2's,
	// always from the end of the deck.
	assert.Equal(t, before[35], discardTop)
	require.Len(t, hand1, HandSize)
	require.Len(t, hand2, HandSize)
	for i := 0; i < HandSize; i++ {
		assert.Equal(t, before[34-i], hand1[i])
		assert.Equal(t, before[30-i], hand2[i])
	}
	assert.Equal(t, before[:27], rest)
}

func TestDealShortDeck(t *testing.T) {
	deck := NewDeck()[:8]
	_, _, _, _, err := Deal(deck)
	assert.Error(t, err)
}
