package sessions

import (
	"sync"

	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/messages"
)

// Lobby pairs incoming connections into sessions in arrival order. A
// connection waits alone at most; the moment a second one arrives, a
// session is created for the pair.
type Lobby struct {
	lock    sync.Mutex
	waiting Connection
	manager *Manager
}

// NewLobbyOptions contains options for creating a new Lobby.
type NewLobbyOptions struct {
	Manager *Manager
}

func NewLobby(opts NewLobbyOptions) *Lobby {
	return &Lobby{
		manager: opts.Manager,
	}
}

// HandleConnect admits a connection. The first of a pair waits; the
// second triggers session creation.
func (l *Lobby) HandleConnect(conn Connection) {
	conn.SetHandler(l)

	l.lock.Lock()
	if l.waiting == nil {
		l.waiting = conn
		l.lock.Unlock()
		log.Info("lobby: %s is waiting for an opponent", conn.ID())
		return
	}
	opponent := l.waiting
	l.waiting = nil
	l.lock.Unlock()

	if _, err := l.manager.CreateSession(opponent, conn); err != nil {
		log.Error("lobby: failed to create session: %v", err)
		opponent.Close()
		conn.Close()
	}
}

// HandleFrame implements Handler for connections that are still
// waiting in the lobby: any message before the game starts is invalid.
func (l *Lobby) HandleFrame(conn Connection, text bool, data []byte) {
	if err := conn.Send(messages.IncorrectRequest{Message: "waiting for an opponent"}); err != nil {
		log.Debug("lobby: failed to reply to %s: %v", conn.ID(), err)
	}
}

// HandleClose implements Handler. A waiting connection that drops
// frees the lobby slot for the next arrival.
func (l *Lobby) HandleClose(conn Connection) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.waiting != nil && l.waiting.ID() == conn.ID() {
		l.waiting = nil
		log.Info("lobby: %s left before a game started", conn.ID())
	}
}

// Waiting reports whether a connection is currently waiting for an
// opponent.
func (l *Lobby) Waiting() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.waiting != nil
}
