package messages

import (
	"github.com/cardtable/cardtable/pkg/cards"
)

// Message type tags shared with the client protocol.
const (
	TypePlayerMove        = "playerMove"
	TypeRepeatGame        = "repeatGame"
	TypeGameStarted       = "gameStarted"
	TypeGameAborted       = "gameAborted"
	TypeChangePlayer      = "changePlayer"
	TypeGameResult        = "gameResult"
	TypeGameDraw          = "gameDraw"
	TypeIncorrectRequest  = "incorrectRequest"
	TypeIncorrectResponse = "incorrectResponse"
)

// Action name tags nested inside playerMove messages.
const (
	ActionEndTurn  = "endTurn"
	ActionGiveUp   = "giveUp"
	ActionPutCard  = "putCard"
	ActionTakeCard = "takeCard"
)

// GameState is the wire representation of a session's game state.
// PlayerID here is the slot whose turn it is, not the recipient's slot;
// the recipient's own slot travels in the enclosing message envelope.
type GameState struct {
	GameCards []cards.Card `json:"gameCards"`
	LastCard  *cards.Card  `json:"lastCard,omitempty"`
	Player1   []cards.Card `json:"player1"`
	Player2   []cards.Card `json:"player2"`
	PlayerID  int          `json:"playerId"`
}

// ClientMessage is a message received from a participant. The set of
// variants is closed: adding a message kind means adding a type here and
// extending every switch over ClientMessage, which the compiler checks.
type ClientMessage interface {
	isClientMessage()
}

// PlayerMove carries one game action from the participant whose turn it
// (usually) is.
type PlayerMove struct {
	Action PlayerAction
}

// RepeatGame asks the server to restart the session with a fresh shuffle.
type RepeatGame struct{}

// IncorrectRequest reports a request the receiving side could not
// understand. It flows in both directions: the server replies with it,
// and a client-sent one is echoed back per the protocol.
type IncorrectRequest struct {
	Message string
}

// IncorrectResponse reports a server reply the client could not
// understand. The server only logs these.
type IncorrectResponse struct {
	Message string
}

func (PlayerMove) isClientMessage()        {}
func (RepeatGame) isClientMessage()        {}
func (IncorrectRequest) isClientMessage()  {}
func (IncorrectResponse) isClientMessage() {}

// PlayerAction is the closed set of actions a playerMove can carry.
type PlayerAction interface {
	isPlayerAction()
}

// EndTurn passes the move to the other participant, or triggers win
// evaluation when the deck is empty.
type EndTurn struct{}

// GiveUp forfeits the game. The server derives the forfeiting slot from
// the sending connection; the playerId the client sends is informational.
type GiveUp struct {
	PlayerID int
}

// PutCard plays a card from the acting hand onto the discard pile.
type PutCard struct {
	Card cards.Card
}

// TakeCard draws one card from the deck into the acting hand.
type TakeCard struct{}

func (EndTurn) isPlayerAction()  {}
func (GiveUp) isPlayerAction()   {}
func (PutCard) isPlayerAction()  {}
func (TakeCard) isPlayerAction() {}

// ServerMessage is a message sent to a participant.
type ServerMessage interface {
	isServerMessage()
}

// GameStarted announces a fresh game. PlayerID is the recipient's slot.
type GameStarted struct {
	GameState GameState
	PlayerID  int
}

// GameAborted tells the remaining participant the session is gone.
type GameAborted struct{}

// ChangePlayer broadcasts the state after a move. PlayerID is the
// recipient's slot; the turn owner is inside GameState.
type ChangePlayer struct {
	GameState GameState
	PlayerID  int
}

// GameResult reports a decided game to one participant.
type GameResult struct {
	Win bool
}

// GameDraw reports that the deck ran out with equal scores.
type GameDraw struct{}

func (GameStarted) isServerMessage()       {}
func (GameAborted) isServerMessage()       {}
func (ChangePlayer) isServerMessage()      {}
func (GameResult) isServerMessage()        {}
func (GameDraw) isServerMessage()          {}
func (IncorrectRequest) isServerMessage()  {}
func (IncorrectResponse) isServerMessage() {}
