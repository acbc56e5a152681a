package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rigzlion8/watermaji/internal/domain"
	"github.com/rigzlion8/watermaji/internal/relay"
	"go.uber.org/zap"
)

// WSHandler upgrades HTTP requests to relay-managed WebSocket connections
type WSHandler struct {
	relay    *relay.Relay
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(r *relay.Relay, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		relay:  r,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, o := range allowedOrigins {
					if o == "*" || o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// Serve gates the handshake on a token and hands the connection to the relay
func (h *WSHandler) Serve(c *gin.Context) {
	// TODO: verify the token against AuthService instead of only checking
	// presence, and scope join-admin-room to admin tokens.
	token := c.Query("token")
	if token == "" {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := relay.NewClient(uuid.New().String(), h.relay, conn, h.logger)
	h.logger.Info("client connected", zap.String("connection_id", client.ID()))

	client.Run()

	h.logger.Info("client disconnected", zap.String("connection_id", client.ID()))
}
