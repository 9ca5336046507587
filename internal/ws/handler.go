package ws

import (
	"net/http"

	"hamsterhub/internal/logger"
	"hamsterhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the connection and attaches it to a room. Identity comes
// from the token query param since browsers cannot set headers on websocket
// handshakes. An empty room param creates a fresh room.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		memberID, err := service.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		roomID := c.Query("room")
		if roomID == "" {
			roomID = uuid.NewString()
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		room := hub.GetOrCreate(roomID)
		client := NewClient(uuid.NewString(), memberID, conn, room)
		room.Attach(client)
		client.Run()
	}
}
