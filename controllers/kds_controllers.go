package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/drivethru-app/kds"
	"github.com/yeremiapane/drivethru-app/middlewares"
	"github.com/yeremiapane/drivethru-app/utils"
)

// BoardController serves the live order board over websocket.
type BoardController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

func NewBoardController(hub *kds.Hub, allowedOrigins []string) *BoardController {
	return &BoardController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middlewares.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// BoardHandler -> endpoint WebSocket
func (bc *BoardController) BoardHandler(c *gin.Context) {
	ws, err := bc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.InfoLogger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	bc.Hub.Register(ws, c.ClientIP())

	// board clients only listen; reading detects the disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	bc.Hub.Unregister(ws)
}
