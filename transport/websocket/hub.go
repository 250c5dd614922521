package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts held while the hub loop is busy.
	broadcastBuffer = 256
)

// Event types sent to spectators
const (
	EventGameStarted = "game_started"
	EventGuess       = "guess"
)

// AllGames subscribes a spectator to every game, including games started
// after it connected.
const AllGames = "*"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Spectators are read-only
		return true
	},
}

// Message is the envelope pushed to spectators of a game
type Message struct {
	Type      string      `json:"type"`
	GameID    string      `json:"game_id"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Client is one spectator connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

type countRequest struct {
	gameID string
	reply  chan int
}

// Hub maintains the set of active spectators and broadcasts messages.
// All maps are owned by the Run goroutine.
type Hub struct {
	// Registered clients by game ID
	games map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	counts     chan countRequest

	// closed when Run returns
	done chan struct{}

	now func() time.Time
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run starts the hub's event loop. It returns when ctx is done, closing
// every spectator connection.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.counts:
			req.reply <- len(h.games[req.gameID])
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for gameID, clients := range h.games {
		for client := range clients {
			close(client.send)
		}
		delete(h.games, gameID)
	}
	obslog.L().Debug("websocket hub stopped")
}

// ServeWS upgrades the request and attaches it as a spectator of gameID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		obslog.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		gameID: gameID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToGame queues an event for every spectator of gameID. It never
// blocks; when the queue is full the event is dropped.
func (h *Hub) BroadcastToGame(gameID, eventType string, data interface{}) {
	message := &Message{
		Type:      eventType,
		GameID:    gameID,
		Data:      data,
		Timestamp: h.now().UnixMilli(),
	}

	select {
	case h.broadcast <- message:
	default:
		obslog.L().Warn("websocket broadcast dropped",
			zap.String("game_id", gameID),
			zap.String("type", eventType))
	}
}

// ClientCount returns the number of spectators attached to gameID.
// It requires Run to be active and reports 0 once Run has returned.
func (h *Hub) ClientCount(gameID string) int {
	reply := make(chan int, 1)
	select {
	case h.counts <- countRequest{gameID: gameID, reply: reply}:
	case <-h.done:
		return 0
	}
	return <-reply
}

// registerClient adds a client to a game
func (h *Hub) registerClient(client *Client) {
	if h.games[client.gameID] == nil {
		h.games[client.gameID] = make(map[*Client]bool)
	}
	h.games[client.gameID][client] = true

	obslog.L().Debug("spectator registered",
		zap.String("game_id", client.gameID),
		zap.Int("clients", len(h.games[client.gameID])))
}

// unregisterClient removes a client from a game
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.games[client.gameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.games, client.gameID)
	}

	obslog.L().Debug("spectator unregistered",
		zap.String("game_id", client.gameID),
		zap.Int("clients", len(clients)))
}

// broadcastMessage sends a message to the spectators of its game and to
// spectators of AllGames
func (h *Hub) broadcastMessage(message *Message) {
	if len(h.games[message.GameID]) == 0 && len(h.games[AllGames]) == 0 {
		return
	}
	targets := []map[*Client]bool{h.games[message.GameID]}
	if message.GameID != AllGames {
		targets = append(targets, h.games[AllGames])
	}

	data, err := json.Marshal(message)
	if err != nil {
		obslog.L().Error("failed to marshal broadcast message", zap.Error(err))
		return
	}

	for _, clients := range targets {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Slow consumer
				h.unregisterClient(client)
			}
		}
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				obslog.L().Debug("websocket closed", zap.String("game_id", c.gameID), zap.Error(err))
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
