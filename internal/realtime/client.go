package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one live socket: either a store's player or a user's dashboard.
// Identity fields are fixed at handshake and never change afterwards.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	Type    ClientType
	StoreID int // players
	OrgID   int // dashboards, and players after store lookup
	UserID  int // dashboards
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, 64),
	}
}

// trySend never blocks the hub on a slow consumer; a client that cannot
// drain its buffer loses the message and catches up on its next state fetch.
func (c *Client) trySend(msg Message) {
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("type", string(c.Type)).Int("store_id", c.StoreID).Msg("realtime send buffer full, dropping message")
	}
}

// readPump delivers inbound frames to the relay until the socket dies.
func (c *Client) readPump(relay *Relay) {
	defer func() {
		relay.clientGone(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("unexpected websocket close")
			}
			return
		}
		relay.dispatch(c, msg)
	}
}

// writePump drains the send channel onto the socket and keeps it alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
