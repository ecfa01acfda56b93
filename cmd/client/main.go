package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cardtable/cardtable/pkg/cards"
	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/messages"
	"github.com/cardtable/cardtable/pkg/version"
)

// Terminal client for playing against another connection. Commands:
//
//	put <index>   play the hand card at the given index
//	take          draw a card from the deck
//	end           end the turn
//	giveup        concede the game
//	repeat        start a new game after one finishes
func main() {
	serverURL := flag.String("server", "ws://localhost:8080", "Server websocket URL")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel))

	fmt.Printf("card table client %s\n", version.Get())
	fmt.Printf("connecting to %s\n", *serverURL)

	ws, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect: %v", err))
	}
	defer ws.Close()

	client := &client{ws: ws}
	go client.readLoop()
	client.inputLoop()
}

type client struct {
	ws *websocket.Conn

	// lock guards playerID and hand, written by the read loop and read
	// by the input loop.
	lock     sync.Mutex
	playerID int
	hand     []cards.Card
}

func (c *client) setPlayerID(id int) {
	c.lock.Lock()
	c.playerID = id
	c.lock.Unlock()
}

func (c *client) getPlayerID() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.playerID
}

func (c *client) setHand(hand []cards.Card) {
	c.lock.Lock()
	c.hand = hand
	c.lock.Unlock()
}

func (c *client) handCard(index int) (cards.Card, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if index < 0 || index >= len(c.hand) {
		return cards.Card{}, false
	}
	return c.hand[index], true
}

// serverEnvelope is the subset of every server message the client
// needs to dispatch on.
type serverEnvelope struct {
	Type      string              `json:"type"`
	PlayerID  int                 `json:"playerId"`
	Win       bool                `json:"win"`
	GameState *messages.GameState `json:"gameState"`
}

func (c *client) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			fmt.Println("connection closed")
			os.Exit(0)
		}

		var envelope serverEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Error("failed to parse server message: %v", err)
			continue
		}

		switch envelope.Type {
		case messages.TypeGameStarted:
			c.setPlayerID(envelope.PlayerID)
			fmt.Printf("\ngame started, you are player %d\n", envelope.PlayerID)
			c.printState(envelope.GameState)
		case messages.TypeChangePlayer:
			c.printState(envelope.GameState)
		case messages.TypeGameResult:
			if envelope.Win {
				fmt.Println("\nyou won! type 'repeat' to play again")
			} else {
				fmt.Println("\nyou lost. type 'repeat' to play again")
			}
		case messages.TypeGameDraw:
			fmt.Println("\ndraw. type 'repeat' to play again")
		case messages.TypeGameAborted:
			fmt.Println("\nopponent left, game aborted")
			os.Exit(0)
		case messages.TypeIncorrectRequest:
			var reject struct {
				Message string `json:"message"`
			}
			json.Unmarshal(data, &reject)
			fmt.Printf("rejected: %s\n", reject.Message)
		default:
			c.sendRaw(messages.IncorrectResponse{Message: fmt.Sprintf("unknown message type: %q", envelope.Type)})
		}
	}
}

func (c *client) printState(state *messages.GameState) {
	if state == nil {
		return
	}
	playerID := c.getPlayerID()
	hand := state.Player1
	if playerID == 2 {
		hand = state.Player2
	}
	c.setHand(hand)

	fmt.Printf("\ndeck: %d cards", len(state.GameCards))
	if state.LastCard != nil {
		fmt.Printf(", top of discard: %s", state.LastCard)
	}
	fmt.Println()
	fmt.Print("your hand:")
	for i, card := range hand {
		fmt.Printf(" [%d]%s", i, card)
	}
	fmt.Println()
	if state.PlayerID == playerID {
		fmt.Println("your turn")
	} else {
		fmt.Println("opponent's turn")
	}
}

func (c *client) inputLoop() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "put":
			if len(fields) < 2 {
				fmt.Println("usage: put <index>")
				continue
			}
			index, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("no such card")
				continue
			}
			card, ok := c.handCard(index)
			if !ok {
				fmt.Println("no such card")
				continue
			}
			c.sendMove(messages.PutCard{Card: card})
		case "take":
			c.sendMove(messages.TakeCard{})
		case "end":
			c.sendMove(messages.EndTurn{})
		case "giveup":
			c.sendMove(messages.GiveUp{PlayerID: c.getPlayerID()})
		case "repeat":
			c.sendRaw(messages.RepeatGame{})
		case "quit":
			return
		default:
			fmt.Println("commands: put <index>, take, end, giveup, repeat, quit")
		}
	}
}

func (c *client) sendMove(action messages.PlayerAction) {
	c.sendRaw(messages.PlayerMove{Action: action})
}

func (c *client) sendRaw(msg messages.ClientMessage) {
	data, err := messages.EncodeClientMessage(msg)
	if err != nil {
		log.Error("failed to encode message: %v", err)
		return
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error("failed to send message: %v", err)
	}
}
