package controllers

import (
	"net/http"

	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware and the token check.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedHandler upgrades an authenticated request to a live order feed.
func FeedHandler(hub *feed.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		hub.Register(ws, role)

		// Clients only listen; reading detects disconnects.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(ws)
	}
}
