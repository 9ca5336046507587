package ws

import (
	"time"

	"hamsterhub/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type Client struct {
	ID       string
	MemberID int64
	Conn     *websocket.Conn
	Send     chan []byte

	Room *Room
	Done chan struct{}
}

func NewClient(id string, memberID int64, conn *websocket.Conn, room *Room) *Client {
	return &Client{
		ID:       id,
		MemberID: memberID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Room:     room,
		Done:     make(chan struct{}),
	}
}

func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// read
func (c *Client) readPump() {
	defer func() {
		close(c.Done)
		c.Room.Disconnect(c)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			logger.Debug("ws read closed", "client", c.ID, "error", err)
			break
		}
		c.Room.HandleMessage(c, msg)
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write failed", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		// Send stays open for the client's whole life; the read side
		// signals shutdown so a late broadcast never hits a closed channel
		case <-c.Done:
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
