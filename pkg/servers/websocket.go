package servers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cardtable/cardtable/pkg/log"
	"github.com/cardtable/cardtable/pkg/messages"
	"github.com/cardtable/cardtable/pkg/sessions"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// pingPeriod is how often pings are sent. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize caps inbound frames. Client messages are small.
	maxMessageSize = 4096
	// sendBufferSize is the per-connection outbound queue depth.
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game is served to browser clients on other origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketServer accepts player connections and hands them to the
// lobby for pairing.
type WebSocketServer struct {
	port       int
	lobby      *sessions.Lobby
	httpServer *http.Server
}

// NewWebSocketServerOptions contains options for creating a new WebSocketServer.
type NewWebSocketServerOptions struct {
	Port  int
	Lobby *sessions.Lobby
}

func NewWebSocketServer(opts NewWebSocketServerOptions) *WebSocketServer {
	return &WebSocketServer{
		port:  opts.Port,
		lobby: opts.Lobby,
	}
}

// Start starts the server and blocks until it is shut down.
func (s *WebSocketServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConnection)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	log.Info("websocket server listening on port %d", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %v", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *WebSocketServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *WebSocketServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection: %v", err)
		return
	}

	conn := newWSConnection(ws)
	log.Info("client connected: %s", conn.ID())

	s.lobby.HandleConnect(conn)
	conn.start()
}

// wsConnection adapts a gorilla websocket to the sessions.Connection
// interface. All writes go through a buffered channel drained by a
// single write goroutine; reads run on the calling goroutine.
type wsConnection struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	handler atomic.Value

	closeOnce sync.Once
	closed    chan struct{}
}

// handlerBox wraps the handler so atomic.Value sees a single concrete
// type even as lobby and session handlers alternate.
type handlerBox struct {
	handler sessions.Handler
}

func newWSConnection(ws *websocket.Conn) *wsConnection {
	return &wsConnection{
		id:     uuid.NewString(),
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
}

func (c *wsConnection) ID() string {
	return c.id
}

func (c *wsConnection) SetHandler(handler sessions.Handler) {
	c.handler.Store(handlerBox{handler: handler})
}

func (c *wsConnection) currentHandler() sessions.Handler {
	box, ok := c.handler.Load().(handlerBox)
	if !ok {
		return nil
	}
	return box.handler
}

// Send encodes and queues a message for the write pump.
func (c *wsConnection) Send(msg messages.ServerMessage) error {
	data, err := messages.EncodeServerMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %v", err)
	}

	select {
	case <-c.closed:
		return fmt.Errorf("connection %s is closed", c.id)
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("connection %s send buffer is full", c.id)
	}
}

// Close shuts the connection down. Safe to call more than once and
// from any goroutine.
func (c *wsConnection) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
}

// start launches the write pump and runs the read pump on the calling
// goroutine. It returns when the connection is gone.
func (c *wsConnection) start() {
	go c.writePump()
	c.readPump()
}

// readPump reads frames and routes them to the current handler. Binary
// frames are passed through with text=false so the protocol layer can
// reject them.
func (c *wsConnection) readPump() {
	defer func() {
		c.Close()
		if handler := c.currentHandler(); handler != nil {
			handler.HandleClose(c)
		}
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection %s read error: %v", c.id, err)
			}
			return
		}
		if handler := c.currentHandler(); handler != nil {
			handler.HandleFrame(c, messageType == websocket.TextMessage, data)
		}
	}
}

// writePump drains the send channel to the peer and keeps the
// connection alive with pings.
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("connection %s write error: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
