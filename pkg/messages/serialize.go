package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cardtable/cardtable/pkg/cards"
)

// clientEnvelope is the raw shape of an inbound frame before the
// message kind is known.
type clientEnvelope struct {
	Type    string          `json:"type"`
	Action  json.RawMessage `json:"action"`
	Message string          `json:"message"`
}

// clientAction is the raw shape of a playerMove action.
type clientAction struct {
	Name     string      `json:"name"`
	PlayerID int         `json:"playerId"`
	Card     *cards.Card `json:"card"`
}

// DecodeClientMessage turns a raw inbound frame into a ClientMessage.
// It never fails: non-text frames, JSON syntax errors, unknown message
// types and unknown action names all decode to an IncorrectRequest
// carrying a diagnostic, which the caller sends back to the sender.
func DecodeClientMessage(text bool, data []byte) ClientMessage {
	if !text {
		return IncorrectRequest{Message: "wrong data type"}
	}

	var envelope clientEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return IncorrectRequest{Message: fmt.Sprintf("can't parse JSON data: %v", err)}
	}

	switch envelope.Type {
	case TypePlayerMove:
		action, err := decodePlayerAction(envelope.Action)
		if err != nil {
			return IncorrectRequest{Message: err.Error()}
		}
		return PlayerMove{Action: action}
	case TypeRepeatGame:
		return RepeatGame{}
	case TypeIncorrectRequest:
		return IncorrectRequest{Message: envelope.Message}
	case TypeIncorrectResponse:
		return IncorrectResponse{Message: envelope.Message}
	default:
		return IncorrectRequest{Message: fmt.Sprintf("unknown message type: %q", envelope.Type)}
	}
}

func decodePlayerAction(raw json.RawMessage) (PlayerAction, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("playerMove message is missing an action")
	}

	var action clientAction
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, fmt.Errorf("can't parse action: %v", err)
	}

	switch action.Name {
	case ActionEndTurn:
		return EndTurn{}, nil
	case ActionGiveUp:
		return GiveUp{PlayerID: action.PlayerID}, nil
	case ActionPutCard:
		if action.Card == nil {
			return nil, fmt.Errorf("putCard action is missing a card")
		}
		return PutCard{Card: *action.Card}, nil
	case ActionTakeCard:
		return TakeCard{}, nil
	default:
		return nil, fmt.Errorf("unknown action name: %q", action.Name)
	}
}

// EncodeClientMessage serializes a ClientMessage to its JSON wire
// shape. Used by the client binary and by protocol tests.
func EncodeClientMessage(msg ClientMessage) ([]byte, error) {
	switch m := msg.(type) {
	case PlayerMove:
		action, err := encodePlayerAction(m.Action)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Type   string          `json:"type"`
			Action json.RawMessage `json:"action"`
		}{TypePlayerMove, action})
	case RepeatGame:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{TypeRepeatGame})
	case IncorrectRequest:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{TypeIncorrectRequest, m.Message})
	case IncorrectResponse:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{TypeIncorrectResponse, m.Message})
	default:
		return nil, fmt.Errorf("unknown client message type: %T", msg)
	}
}

func encodePlayerAction(action PlayerAction) (json.RawMessage, error) {
	switch a := action.(type) {
	case EndTurn:
		return json.Marshal(struct {
			Name string `json:"name"`
		}{ActionEndTurn})
	case GiveUp:
		return json.Marshal(struct {
			Name     string `json:"name"`
			PlayerID int    `json:"playerId"`
		}{ActionGiveUp, a.PlayerID})
	case PutCard:
		return json.Marshal(struct {
			Name string     `json:"name"`
			Card cards.Card `json:"card"`
		}{ActionPutCard, a.Card})
	case TakeCard:
		return json.Marshal(struct {
			Name string `json:"name"`
		}{ActionTakeCard})
	default:
		return nil, fmt.Errorf("unknown player action type: %T", action)
	}
}

// EncodeServerMessage serializes a ServerMessage to its JSON wire shape.
func EncodeServerMessage(msg ServerMessage) ([]byte, error) {
	switch m := msg.(type) {
	case GameStarted:
		return json.Marshal(struct {
			Type      string    `json:"type"`
			GameState GameState `json:"gameState"`
			PlayerID  int       `json:"playerId"`
		}{TypeGameStarted, m.GameState, m.PlayerID})
	case GameAborted:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{TypeGameAborted})
	case ChangePlayer:
		return json.Marshal(struct {
			Type      string    `json:"type"`
			GameState GameState `json:"gameState"`
			PlayerID  int       `json:"playerId"`
		}{TypeChangePlayer, m.GameState, m.PlayerID})
	case GameResult:
		return json.Marshal(struct {
			Type string `json:"type"`
			Win  bool   `json:"win"`
		}{TypeGameResult, m.Win})
	case GameDraw:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{TypeGameDraw})
	case IncorrectRequest:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{TypeIncorrectRequest, m.Message})
	case IncorrectResponse:
		return json.Marshal(struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{TypeIncorrectResponse, m.Message})
	default:
		return nil, fmt.Errorf("unknown server message type: %T", msg)
	}
}
