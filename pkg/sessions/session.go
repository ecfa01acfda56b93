package sessions

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cardtable/cardtable/pkg/game"
	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/messages"
	"github.com/cardtable/cardtable/pkg/queue"
	"github.com/cardtable/cardtable/pkg/repositories"
)

const (
	// EventQueueCapacity bounds the per-session inbound event queue.
	EventQueueCapacity = 256
)

// Events consumed by the session goroutine. Both connections' read
// pumps feed the same queue, which is what serializes all game state
// mutation for the session.
type frameEvent struct {
	conn Connection
	text bool
	data []byte
}

type closeEvent struct {
	conn Connection
}

// Session is one game instance bound to exactly two connections. It
// owns the game engine and a connection-to-slot table; the connections
// themselves are owned by the transport layer.
type Session struct {
	id      string
	conns   [2]Connection
	slots   map[string]game.Slot
	engine  *game.Engine
	rng     *rand.Rand
	events  queue.Queue
	results chan<- repositories.MatchResult

	onDestroy func(*Session)

	// lifecycleLock guards destroyed and started; started is written by
	// Start and by restarts on the session goroutine while the status
	// API reads it from HTTP handler goroutines.
	lifecycleLock sync.Mutex
	destroyed     bool
	started       time.Time

	// Owned by the session goroutine after Start.
	reported bool
}

// NewSessionOptions contains options for creating a new Session.
type NewSessionOptions struct {
	ID string
	// Conns are the two participant connections. The first listed gets
	// slot 1, the second slot 2.
	Conns [2]Connection
	// RNG is the session's random source. Defaults to a time-seeded
	// PCG; tests inject a fixed seed for deterministic deals.
	RNG *rand.Rand
	// Results optionally receives one record per completed match.
	Results chan<- repositories.MatchResult
	// OnDestroy is called once when the session is destroyed.
	OnDestroy func(*Session)
}

// NewSession creates a session with a freshly dealt game. Call Start
// to send the start messages and begin consuming events.
func NewSession(opts NewSessionOptions) (*Session, error) {
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	engine, err := game.NewEngine(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %v", err)
	}

	return &Session{
		id:     opts.ID,
		conns:  opts.Conns,
		engine: engine,
		rng:    rng,
		slots: map[string]game.Slot{
			opts.Conns[0].ID(): game.Slot1,
			opts.Conns[1].ID(): game.Slot2,
		},
		events:    queue.NewInMemoryQueue(EventQueueCapacity),
		results:   opts.Results,
		onDestroy: opts.OnDestroy,
	}, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// Info returns an immutable snapshot of the session for the status API.
func (s *Session) Info() SessionInfo {
	s.lifecycleLock.Lock()
	started := s.started
	s.lifecycleLock.Unlock()
	return SessionInfo{
		ID:      s.id,
		Started: started,
		Players: []string{s.conns[0].ID(), s.conns[1].ID()},
	}
}

func (s *Session) setStarted(at time.Time) {
	s.lifecycleLock.Lock()
	s.started = at
	s.lifecycleLock.Unlock()
}

// Start routes both connections to the session, sends each participant
// its personalized start message, and begins consuming inbound events.
func (s *Session) Start() {
	s.setStarted(time.Now())
	for _, conn := range s.conns {
		conn.SetHandler(s)
	}
	s.sendStartMessages()
	go s.run()
}

// HandleFrame implements Handler. Called from a connection's read
// goroutine; the frame is queued for the session goroutine.
func (s *Session) HandleFrame(conn Connection, text bool, data []byte) {
	if err := s.events.Enqueue(frameEvent{conn: conn, text: text, data: data}); err != nil {
		log.Warn("session %s: dropping frame from %s: %v", s.id, conn.ID(), err)
	}
}

// HandleClose implements Handler.
func (s *Session) HandleClose(conn Connection) {
	// Enqueue fails only when the queue is closed, i.e. the session is
	// already being destroyed.
	if err := s.events.Enqueue(closeEvent{conn: conn}); err != nil {
		log.Debug("session %s: close event after teardown: %v", s.id, err)
	}
}

// Destroy tears the session down: best-effort game-aborted notices,
// closes both connections, stops the event loop, and releases the
// session from its manager. Idempotent.
func (s *Session) Destroy() {
	s.lifecycleLock.Lock()
	if s.destroyed {
		s.lifecycleLock.Unlock()
		return
	}
	s.destroyed = true
	s.lifecycleLock.Unlock()

	for _, conn := range s.conns {
		if err := conn.Send(messages.GameAborted{}); err != nil {
			log.Debug("session %s: failed to send game aborted to %s: %v", s.id, conn.ID(), err)
		}
		conn.Close()
	}

	s.events.Close()

	if s.onDestroy != nil {
		s.onDestroy(s)
	}
	log.Info("session %s: destroyed", s.id)
}

func (s *Session) isDestroyed() bool {
	s.lifecycleLock.Lock()
	defer s.lifecycleLock.Unlock()
	return s.destroyed
}

// run is the session goroutine: it fully processes one event
// (validate, mutate, broadcast) before taking the next, so game state
// is never mutated concurrently.
func (s *Session) run() {
	for {
		item, ok := s.events.Dequeue()
		if !ok {
			break
		}
		switch event := item.(type) {
		case frameEvent:
			if s.isDestroyed() {
				continue
			}
			s.handleFrame(event)
		case closeEvent:
			log.Info("session %s: %s disconnected", s.id, event.conn.ID())
			s.Destroy()
		}
	}
	s.finalize()
}

// finalize records an aborted match if the current one never finished.
// Runs on the session goroutine after the event loop stops.
func (s *Session) finalize() {
	if !s.reported && s.engine.Phase() == game.PhasePlaying {
		s.report(game.SlotNone, repositories.ReasonAbort)
	}
}

func (s *Session) handleFrame(event frameEvent) {
	msg := messages.DecodeClientMessage(event.text, event.data)
	switch m := msg.(type) {
	case messages.PlayerMove:
		s.handleMove(event.conn, m)
	case messages.RepeatGame:
		s.restart()
	case messages.IncorrectRequest:
		// Echo path: the decoder maps everything it cannot understand
		// (and client-sent incorrectRequest messages) to this variant,
		// and the sender gets it back.
		s.send(event.conn, m)
	case messages.IncorrectResponse:
		log.Error("session %s: client %s reported an incorrect response: %s", s.id, event.conn.ID(), m.Message)
	}
}

func (s *Session) handleMove(conn Connection, move messages.PlayerMove) {
	slot, ok := s.slots[conn.ID()]
	if !ok {
		log.Error("session %s: move from unknown connection %s", s.id, conn.ID())
		return
	}

	result := s.engine.Apply(slot, move.Action)
	switch {
	case result.Reject != "":
		s.send(conn, messages.IncorrectRequest{Message: result.Reject})
	case result.Over:
		reason := repositories.ReasonScore
		if _, isGiveUp := move.Action.(messages.GiveUp); isGiveUp {
			reason = repositories.ReasonGiveUp
		}
		s.finishMatch(result.Winner, reason)
	case result.Changed:
		s.broadcastState()
	}
}

// restart rebuilds the game from scratch with a new shuffle, keeping
// the same connections and slot assignment.
func (s *Session) restart() {
	if err := s.engine.Reset(s.rng); err != nil {
		log.Error("session %s: failed to restart: %v", s.id, err)
		return
	}
	s.setStarted(time.Now())
	s.reported = false
	s.sendStartMessages()
	log.Info("session %s: restarted", s.id)
}

func (s *Session) sendStartMessages() {
	snapshot := s.engine.State().Snapshot()
	for _, conn := range s.conns {
		s.send(conn, messages.GameStarted{
			GameState: snapshot,
			PlayerID:  int(s.slots[conn.ID()]),
		})
	}
}

// broadcastState sends both participants the updated state. The state
// content is identical; the envelope carries each recipient's own slot.
func (s *Session) broadcastState() {
	snapshot := s.engine.State().Snapshot()
	for _, conn := range s.conns {
		s.send(conn, messages.ChangePlayer{
			GameState: snapshot,
			PlayerID:  int(s.slots[conn.ID()]),
		})
	}
}

func (s *Session) finishMatch(winner game.Slot, reason string) {
	if winner == game.SlotNone {
		for _, conn := range s.conns {
			s.send(conn, messages.GameDraw{})
		}
		reason = repositories.ReasonDraw
	} else {
		for _, conn := range s.conns {
			s.send(conn, messages.GameResult{Win: s.slots[conn.ID()] == winner})
		}
	}
	s.report(winner, reason)
	log.Info("session %s: match over (winner=%d, reason=%s)", s.id, winner, reason)
}

// report emits one match record per finished (or aborted) match. The
// record channel is non-blocking: persistence never stalls a session.
func (s *Session) report(winner game.Slot, reason string) {
	if s.reported {
		return
	}
	s.reported = true
	if s.results == nil {
		return
	}
	s.lifecycleLock.Lock()
	started := s.started
	s.lifecycleLock.Unlock()
	result := repositories.MatchResult{
		SessionID: s.id,
		Winner:    int(winner),
		Reason:    reason,
		Duration:  time.Since(started),
		Timestamp: time.Now(),
	}
	select {
	case s.results <- result:
	default:
		log.Warn("session %s: match result channel is full, dropping record", s.id)
	}
}

// send reports failed sends and moves on: a dead peer's writes fail
// independently and never block state changes for the other.
func (s *Session) send(conn Connection, msg messages.ServerMessage) {
	if err := conn.Send(msg); err != nil {
		log.Error("session %s: failed to send %T to %s: %v", s.id, msg, conn.ID(), err)
	}
}
