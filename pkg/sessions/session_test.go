package sessions

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/cardtable/pkg/cards"
	"github.com/cardtable/cardtable/pkg/game"
	"github.com/cardtable/cardtable/pkg/messages"
	"github.com/cardtable/cardtable/pkg/repositories"
)

// fakeConnection records everything sent to it.
type fakeConnection struct {
	id string

	lock    sync.Mutex
	sent    []messages.ServerMessage
	closed  bool
	handler Handler
}

func newFakeConnection(id string) *fakeConnection {
	return &fakeConnection{id: id}
}

func (c *fakeConnection) ID() string {
	return c.id
}

func (c *fakeConnection) Send(msg messages.ServerMessage) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConnection) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
}

func (c *fakeConnection) SetHandler(handler Handler) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.handler = handler
}

func (c *fakeConnection) isClosed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closed
}

func (c *fakeConnection) received() []messages.ServerMessage {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]messages.ServerMessage{}, c.sent...)
}

func (c *fakeConnection) lastMessage(t *testing.T) messages.ServerMessage {
	t.Helper()
	msgs := c.received()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func newTestSession(t *testing.T, results chan repositories.MatchResult) (*Session, *fakeConnection, *fakeConnection) {
	t.Helper()
	c1 := newFakeConnection("conn-1")
	c2 := newFakeConnection("conn-2")
	session, err := NewSession(NewSessionOptions{
		ID:      "test-session",
		Conns:   [2]Connection{c1, c2},
		RNG:     rand.New(rand.NewPCG(1, 2)),
		Results: results,
	})
	require.NoError(t, err)
	return session, c1, c2
}

// frame builds a text frame event from a client message.
func frame(t *testing.T, conn Connection, msg messages.ClientMessage) frameEvent {
	t.Helper()
	data, err := messages.EncodeClientMessage(msg)
	require.NoError(t, err)
	return frameEvent{conn: conn, text: true, data: data}
}

func TestSessionStartMessages(t *testing.T) {
	session, c1, c2 := newTestSession(t, nil)
	session.sendStartMessages()

	started1, ok := c1.lastMessage(t).(messages.GameStarted)
	require.True(t, ok)
	assert.Equal(t, 1, started1.PlayerID)

	started2, ok := c2.lastMessage(t).(messages.GameStarted)
	require.True(t, ok)
	assert.Equal(t, 2, started2.PlayerID)

	// Same board, slot 1 to move.
	assert.Equal(t, started1.GameState, started2.GameState)
	assert.Equal(t, 1, started1.GameState.PlayerID)
	assert.Len(t, started1.GameState.Player1, 4)
	assert.Len(t, started1.GameState.Player2, 4)
}

func TestSessionEndTurn(t *testing.T) {
	session, c1, c2 := newTestSession(t, nil)

	session.handleFrame(frame(t, c1, messages.PlayerMove{Action: messages.EndTurn{}}))

	change1, ok := c1.lastMessage(t).(messages.ChangePlayer)
	require.True(t, ok)
	change2, ok := c2.lastMessage(t).(messages.ChangePlayer)
	require.True(t, ok)

	assert.Equal(t, 1, change1.PlayerID)
	assert.Equal(t, 2, change2.PlayerID)
	assert.Equal(t, 2, change1.GameState.PlayerID)
	assert.Equal(t, change1.GameState, change2.GameState)
}

func TestSessionOutOfTurnMove(t *testing.T) {
	session, c1, c2 := newTestSession(t, nil)

	session.handleFrame(frame(t, c2, messages.PlayerMove{Action: messages.EndTurn{}}))

	reject, ok := c2.lastMessage(t).(messages.IncorrectRequest)
	require.True(t, ok)
	assert.Equal(t, "not your turn", reject.Message)
	assert.Empty(t, c1.received())
}

func TestSessionGiveUp(t *testing.T) {
	results := make(chan repositories.MatchResult, 1)
	session, c1, c2 := newTestSession(t, results)

	session.handleFrame(frame(t, c1, messages.PlayerMove{Action: messages.GiveUp{PlayerID: 1}}))

	loss, ok := c1.lastMessage(t).(messages.GameResult)
	require.True(t, ok)
	assert.False(t, loss.Win)

	win, ok := c2.lastMessage(t).(messages.GameResult)
	require.True(t, ok)
	assert.True(t, win.Win)

	select {
	case result := <-results:
		assert.Equal(t, "test-session", result.SessionID)
		assert.Equal(t, 2, result.Winner)
		assert.Equal(t, repositories.ReasonGiveUp, result.Reason)
	default:
		t.Fatal("expected a match result record")
	}
}

func TestSessionRepeatGame(t *testing.T) {
	results := make(chan repositories.MatchResult, 2)
	session, c1, c2 := newTestSession(t, results)

	session.handleFrame(frame(t, c1, messages.PlayerMove{Action: messages.GiveUp{PlayerID: 1}}))
	require.Equal(t, game.PhaseFinished, session.engine.Phase())

	session.handleFrame(frame(t, c2, messages.RepeatGame{}))
	require.Equal(t, game.PhasePlaying, session.engine.Phase())

	started1, ok := c1.lastMessage(t).(messages.GameStarted)
	require.True(t, ok)
	assert.Equal(t, 1, started1.PlayerID)
	_, ok = c2.lastMessage(t).(messages.GameStarted)
	require.True(t, ok)

	// The restarted game reports its own result.
	session.handleFrame(frame(t, c2, messages.PlayerMove{Action: messages.GiveUp{PlayerID: 2}}))
	assert.Len(t, results, 2)
}

func TestSessionDrawReportedToBoth(t *testing.T) {
	results := make(chan repositories.MatchResult, 1)
	session, c1, c2 := newTestSession(t, results)

	// Empty deck and equal hand scores, so ending the turn is a draw.
	state := session.engine.State()
	state.Deck = cards.Deck{}
	state.Hands[game.Slot1] = []cards.Card{{Rank: 4, Suit: cards.SuitClubs}}
	state.Hands[game.Slot2] = []cards.Card{{Rank: 4, Suit: cards.SuitHearts}}

	session.handleFrame(frame(t, c1, messages.PlayerMove{Action: messages.EndTurn{}}))

	_, ok := c1.lastMessage(t).(messages.GameDraw)
	assert.True(t, ok)
	_, ok = c2.lastMessage(t).(messages.GameDraw)
	assert.True(t, ok)

	select {
	case result := <-results:
		assert.Equal(t, 0, result.Winner)
		assert.Equal(t, repositories.ReasonDraw, result.Reason)
	default:
		t.Fatal("expected a match result record")
	}
}

func TestSessionInfoConcurrentWithRestart(t *testing.T) {
	session, c1, _ := newTestSession(t, nil)
	session.Start()
	defer session.Destroy()

	// The status API reads Info from its own goroutine while restarts
	// rewrite the start time on the session goroutine.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			session.Info()
		}
	}()
	for i := 0; i < 100; i++ {
		session.HandleFrame(c1, true, []byte(`{"type":"repeatGame"}`))
	}
	<-done

	info := session.Info()
	assert.Equal(t, "test-session", info.ID)
	assert.False(t, info.Started.IsZero())
}

func TestSessionBinaryFrame(t *testing.T) {
	session, c1, _ := newTestSession(t, nil)

	session.handleFrame(frameEvent{conn: c1, text: false, data: []byte(`{"type":"repeatGame"}`)})

	reject, ok := c1.lastMessage(t).(messages.IncorrectRequest)
	require.True(t, ok)
	assert.Equal(t, "wrong data type", reject.Message)
}

func TestSessionMalformedFrame(t *testing.T) {
	session, c1, _ := newTestSession(t, nil)

	session.handleFrame(frameEvent{conn: c1, text: true, data: []byte(`{"type":`)})

	reject, ok := c1.lastMessage(t).(messages.IncorrectRequest)
	require.True(t, ok)
	assert.Contains(t, reject.Message, "can't parse JSON data")
}

func TestSessionDestroy(t *testing.T) {
	destroyed := 0
	c1 := newFakeConnection("conn-1")
	c2 := newFakeConnection("conn-2")
	session, err := NewSession(NewSessionOptions{
		ID:    "test-session",
		Conns: [2]Connection{c1, c2},
		RNG:   rand.New(rand.NewPCG(1, 2)),
		OnDestroy: func(s *Session) {
			destroyed++
		},
	})
	require.NoError(t, err)

	session.Destroy()
	session.Destroy()

	assert.Equal(t, 1, destroyed)
	assert.True(t, c1.isClosed())
	assert.True(t, c2.isClosed())
	_, ok := c1.lastMessage(t).(messages.GameAborted)
	assert.True(t, ok)
	_, ok = c2.lastMessage(t).(messages.GameAborted)
	assert.True(t, ok)
}

func TestSessionDisconnectAbortsAndReports(t *testing.T) {
	results := make(chan repositories.MatchResult, 1)
	session, c1, c2 := newTestSession(t, results)
	session.Start()

	session.HandleClose(c1)

	select {
	case result := <-results:
		assert.Equal(t, repositories.ReasonAbort, result.Reason)
		assert.Equal(t, 0, result.Winner)
	case <-time.After(time.Second):
		t.Fatal("expected an aborted match record")
	}
	assert.True(t, c1.isClosed())
	assert.True(t, c2.isClosed())
}
