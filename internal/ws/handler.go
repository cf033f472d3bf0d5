package ws

import (
	"github.com/cryptobio/cryptobio-backend/internal/pkg/ws"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type wsHandler struct {
	notificationHub *ws.NotificationHub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func RegisterRoutes(rg *gin.RouterGroup) {
	handler := wsHandler{
		notificationHub: ws.NewNotificationHub(),
	}

	routes := rg.Group("/ws")
	routes.GET("/tips/:sessionId", handler.serveTipStatus)
}

// serveTipStatus streams tip-session status transitions to the page that
// opened the session. The read loop only detects disconnects; the page
// never sends anything meaningful upstream.
func (wsh *wsHandler) serveTipStatus(c *gin.Context) {
	sessionId := c.Param("sessionId")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer wsh.notificationHub.UnregisterListener(sessionId, conn)

	wsh.notificationHub.RegisterListener(sessionId, conn)

	for {
		var buffer any
		if err := conn.ReadJSON(&buffer); err != nil {
			return
		}
	}
}
