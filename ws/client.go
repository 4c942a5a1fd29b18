package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// pongWait is how long a client may stay silent. Clients heartbeat
	// every heartbeatInterval, well inside it.
	pongWait          = 90 * time.Second
	heartbeatInterval = 30 * time.Second
	maxMessageSize    = 4096
	sendBufferSize    = 256
)

// Client is one WebSocket connection. ReadPump and WritePump each run in
// their own goroutine; send is the only channel between them and the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	mu     sync.Mutex

	// closed is guarded by hub.mu and set when the hub closes send.
	closed bool
}

// ReadPump reads client ops until the connection fails, then unregisters.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for user %s: %v", c.userID, err)
			}
			return
		}

		var event struct {
			Op   string          `json:"op"`
			Data json.RawMessage `json:"d"`
		}
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("[ws] invalid message from user %s: %v", c.userID, err)
			continue
		}
		c.handleEvent(event.Op, event.Data)
	}
}

func (c *Client) handleEvent(op string, data json.RawMessage) {
	switch op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[ws] failed to set read deadline for user %s: %v", c.userID, err)
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	case OpTyping:
		var typing TypingData
		if json.Unmarshal(data, &typing) != nil || typing.ConversationID == "" {
			return
		}
		if c.hub.onTyping != nil {
			go c.hub.onTyping(c.userID, typing.ConversationID)
		}

	case OpLocationUpdate:
		var loc LocationData
		if err := json.Unmarshal(data, &loc); err != nil {
			c.sendEvent(Event{Op: OpError, Data: ErrorData{Message: "invalid location"}})
			return
		}
		if c.hub.onLocationUpdate != nil {
			go c.hub.onLocationUpdate(c.userID, loc)
		}

	default:
		log.Printf("[ws] unknown op from user %s: %s", c.userID, op)
	}
}

// sendEvent queues a frame for this connection only.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal event for user %s: %v", c.userID, err)
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.closed {
		c.hub.deliver(c, data)
	}
}

// WritePump drains send until the hub closes it.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.writeMessage(websocket.CloseMessage, nil)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
