package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/cardtable/cardtable/pkg/messages"
)

// Phase is the engine's lifecycle state. There are only two: awaiting
// an action from the turn owner, or finished.
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Engine owns a State and applies validated actions to it. It holds no
// other state between actions. Callers must serialize calls to Apply;
// a session does so by running the engine from a single goroutine.
type Engine struct {
	state  *State
	phase  Phase
	winner Slot
}

// NewEngine creates an engine with a freshly dealt state.
func NewEngine(rng *rand.Rand) (*Engine, error) {
	state, err := NewState(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create game state: %v", err)
	}
	return &Engine{state: state}, nil
}

// Reset deals a fresh state and returns the engine to the playing
// phase. Used for in-place restarts.
func (e *Engine) Reset(rng *rand.Rand) error {
	state, err := NewState(rng)
	if err != nil {
		return fmt.Errorf("failed to reset game state: %v", err)
	}
	e.state = state
	e.phase = PhasePlaying
	e.winner = SlotNone
	return nil
}

// State returns the live game state.
func (e *Engine) State() *State {
	return e.state
}

func (e *Engine) Phase() Phase {
	return e.phase
}

// Winner returns the winning slot of a finished game, or SlotNone for
// a draw. Only meaningful when Phase is PhaseFinished.
func (e *Engine) Winner() Slot {
	return e.winner
}

// Result describes the effect of applying an action. Exactly one of
// the three shapes occurs: a rejection (Reject non-empty, nothing
// mutated), a state change to broadcast (Changed), or a terminal
// outcome (Over, with Winner or SlotNone for a draw).
type Result struct {
	Changed bool
	Reject  string
	Over    bool
	Winner  Slot
}

// Apply validates the action against the current state, mutates the
// state if the action is legal, and reports what happened. Any action
// except GiveUp is rejected when the actor is not the turn owner.
func (e *Engine) Apply(actor Slot, action messages.PlayerAction) Result {
	if e.phase == PhaseFinished {
		return Result{Reject: "game is over"}
	}

	if _, isGiveUp := action.(messages.GiveUp); !isGiveUp && actor != e.state.TurnOwner {
		return Result{Reject: "not your turn"}
	}

	switch a := action.(type) {
	case messages.GiveUp:
		return e.finish(actor.Other())
	case messages.EndTurn:
		return e.applyEndTurn()
	case messages.PutCard:
		return e.applyPutCard(actor, a)
	case messages.TakeCard:
		return e.applyTakeCard(actor)
	default:
		return Result{Reject: fmt.Sprintf("unknown action type: %T", action)}
	}
}

func (e *Engine) applyEndTurn() Result {
	if len(e.state.Deck) == 0 {
		return e.finish(e.evaluateWinner())
	}
	e.state.TurnOwner = e.state.TurnOwner.Other()
	return Result{Changed: true}
}

func (e *Engine) applyPutCard(actor Slot, action messages.PutCard) Result {
	if !e.state.handContains(actor, action.Card) {
		return Result{Reject: fmt.Sprintf("card %s is not in your hand", action.Card)}
	}
	if e.state.DiscardTop != nil && !action.Card.Matches(*e.state.DiscardTop) {
		return Result{Reject: fmt.Sprintf("card %s does not match %s by rank or suit", action.Card, e.state.DiscardTop)}
	}

	e.state.removeFromHand(actor, action.Card)
	played := action.Card
	e.state.DiscardTop = &played
	e.state.TurnOwner = e.state.TurnOwner.Other()
	return Result{Changed: true}
}

func (e *Engine) applyTakeCard(actor Slot) Result {
	card, ok := e.state.Deck.Draw()
	if !ok {
		return Result{Reject: "the deck is empty"}
	}
	e.state.Hands[actor] = append(e.state.Hands[actor], card)
	// Taking a card does not end the move: the same player may take
	// again, put a card, or end the turn.
	return Result{Changed: true}
}

// evaluateWinner compares hand scores once the deck is empty. The
// lower score wins; equal scores are a draw (SlotNone).
func (e *Engine) evaluateWinner() Slot {
	score1 := e.state.Score(Slot1)
	score2 := e.state.Score(Slot2)
	switch {
	case score1 < score2:
		return Slot1
	case score2 < score1:
		return Slot2
	default:
		return SlotNone
	}
}

func (e *Engine) finish(winner Slot) Result {
	e.phase = PhaseFinished
	e.winner = winner
	return Result{Over: true, Winner: winner}
}
