package relay

import "encoding/json"

// Client-emitted event names
const (
	EventJoinUserRoom  = "join-user-room"
	EventJoinRiderRoom = "join-rider-room"
	EventJoinAdminRoom = "join-admin-room"

	EventOrderUpdate          = "order-update"
	EventRiderLocation        = "rider-location"
	EventDeliveryNotification = "delivery-notification"
	EventChatMessage          = "chat-message"
)

// Server-emitted event names
const (
	EventOrderStatusChanged  = "order-status-changed"
	EventOrderUpdated        = "order-updated"
	EventRiderLocationUpdate = "rider-location-update"
)

// AdminRoom is the shared room all admin dashboards join
const AdminRoom = "admin-room"

// Envelope is the wire format for relay messages in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// UserRoom returns the personal room name for a user
func UserRoom(userID string) string {
	return "user-" + userID
}

// RiderRoom returns the personal room name for a rider
func RiderRoom(riderID string) string {
	return "rider-" + riderID
}

// OrderRoom returns the room name shared by the parties of an order
func OrderRoom(orderID string) string {
	return "order-" + orderID
}
