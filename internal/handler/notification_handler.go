package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rigzlion8/watermaji/internal/dto"
	"github.com/rigzlion8/watermaji/internal/relay"
)

// NotificationHandler lets backend operators push delivery notifications
// through the relay without a WebSocket connection
type NotificationHandler struct {
	relay *relay.Relay
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(r *relay.Relay) *NotificationHandler {
	return &NotificationHandler{relay: r}
}

// Send publishes a delivery notification to the target user and the admin room
func (h *NotificationHandler) Send(c *gin.Context) {
	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "message is required",
		})
		return
	}

	notification := gin.H{
		"orderId":   req.OrderID,
		"message":   req.Message,
		"type":      req.Type,
		"timestamp": time.Now().UTC(),
	}

	if req.UserID != "" {
		h.relay.EmitToUser(req.UserID, relay.EventDeliveryNotification, notification)
	}
	h.relay.EmitToAdmin(relay.EventDeliveryNotification, notification)

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "notification sent",
	})
}
