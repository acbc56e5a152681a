package relay

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Relay owns all room memberships and fans out domain events to the
// connections joined to the target rooms. Delivery is best-effort,
// at-most-once: a slow or disconnected client is dropped, never retried.
type Relay struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	members map[*Client]map[string]struct{}
	logger  *zap.Logger
}

// New creates an empty relay
func New(logger *zap.Logger) *Relay {
	return &Relay{
		rooms:   make(map[string]map[*Client]struct{}),
		members: make(map[*Client]map[string]struct{}),
		logger:  logger,
	}
}

// Join adds the client to a room. Joining a room twice is a no-op.
func (r *Relay) Join(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[*Client]struct{})
	}
	r.rooms[room][c] = struct{}{}

	if _, ok := r.members[c]; !ok {
		r.members[c] = make(map[string]struct{})
	}
	r.members[c][room] = struct{}{}

	r.logger.Debug("client joined room",
		zap.String("connection_id", c.ID()),
		zap.String("room", room),
	)
}

// Disconnect removes the client from every room it joined
func (r *Relay) Disconnect(c *Client) {
	r.mu.Lock()
	r.removeLocked(c)
	r.mu.Unlock()

	c.close()
}

// Rooms returns the rooms the client is currently joined to
func (r *Relay) Rooms(c *Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.members[c]))
	for room := range r.members[c] {
		rooms = append(rooms, room)
	}
	return rooms
}

// Publish delivers the event to every connection in each target room.
// Publishing to an empty or unknown room is a silent no-op.
func (r *Relay) Publish(event string, data interface{}, rooms ...string) {
	payload, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("failed to encode event payload", zap.String("event", event), zap.Error(err))
		return
	}

	msg, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		r.logger.Error("failed to encode event envelope", zap.String("event", event), zap.Error(err))
		return
	}

	var dropped []*Client

	r.mu.RLock()
	for _, room := range rooms {
		for c := range r.rooms[room] {
			select {
			case c.send <- msg:
			default:
				// Send buffer full: the client is too slow to keep up
				dropped = append(dropped, c)
			}
		}
	}
	r.mu.RUnlock()

	for _, c := range dropped {
		r.logger.Warn("dropping slow client", zap.String("connection_id", c.ID()))
		r.Disconnect(c)
	}
}

// EmitToUser sends an event to a user's personal room
func (r *Relay) EmitToUser(userID, event string, data interface{}) {
	r.Publish(event, data, UserRoom(userID))
}

// EmitToRider sends an event to a rider's personal room
func (r *Relay) EmitToRider(riderID, event string, data interface{}) {
	r.Publish(event, data, RiderRoom(riderID))
}

// EmitToAdmin sends an event to the admin room
func (r *Relay) EmitToAdmin(event string, data interface{}) {
	r.Publish(event, data, AdminRoom)
}

// EmitToOrder sends an event to an order's room
func (r *Relay) EmitToOrder(orderID, event string, data interface{}) {
	r.Publish(event, data, OrderRoom(orderID))
}

// dispatch routes one inbound client message per the event catalog
func (r *Relay) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventJoinUserRoom:
		if id, ok := decodeID(env.Data); ok {
			r.Join(c, UserRoom(id))
		}
	case EventJoinRiderRoom:
		if id, ok := decodeID(env.Data); ok {
			r.Join(c, RiderRoom(id))
		}
	case EventJoinAdminRoom:
		r.Join(c, AdminRoom)

	case EventOrderUpdate:
		r.routeOrderUpdate(env.Data)
	case EventRiderLocation:
		r.routeRiderLocation(env.Data)
	case EventDeliveryNotification:
		r.routeDeliveryNotification(env.Data)
	case EventChatMessage:
		r.routeChatMessage(env.Data)

	default:
		r.logger.Debug("ignoring unknown event",
			zap.String("connection_id", c.ID()),
			zap.String("event", env.Event),
		)
	}
}

func (r *Relay) routeOrderUpdate(data json.RawMessage) {
	var msg struct {
		OrderID  string          `json:"orderId"`
		UserID   string          `json:"userId"`
		RiderID  string          `json:"riderId"`
		Status   string          `json:"status"`
		Location json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	update := map[string]interface{}{
		"orderId":  msg.OrderID,
		"status":   msg.Status,
		"location": msg.Location,
	}

	if msg.UserID != "" {
		r.EmitToUser(msg.UserID, EventOrderStatusChanged, update)
	}
	if msg.RiderID != "" {
		r.EmitToRider(msg.RiderID, EventOrderUpdated, update)
	}
	r.EmitToAdmin(EventOrderUpdate, stamped(update))
}

func (r *Relay) routeRiderLocation(data json.RawMessage) {
	var msg struct {
		RiderID  string          `json:"riderId"`
		Location json.RawMessage `json:"location"`
		OrderID  string          `json:"orderId"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	if msg.OrderID != "" {
		r.EmitToOrder(msg.OrderID, EventRiderLocationUpdate, stamped(map[string]interface{}{
			"riderId":  msg.RiderID,
			"location": msg.Location,
		}))
	}
	r.EmitToAdmin(EventRiderLocation, stamped(map[string]interface{}{
		"riderId":  msg.RiderID,
		"location": msg.Location,
		"orderId":  msg.OrderID,
	}))
}

func (r *Relay) routeDeliveryNotification(data json.RawMessage) {
	var msg struct {
		OrderID string `json:"orderId"`
		UserID  string `json:"userId"`
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	notification := stamped(map[string]interface{}{
		"orderId": msg.OrderID,
		"message": msg.Message,
		"type":    msg.Type,
	})

	if msg.UserID != "" {
		r.EmitToUser(msg.UserID, EventDeliveryNotification, notification)
	}
	r.EmitToAdmin(EventDeliveryNotification, notification)
}

func (r *Relay) routeChatMessage(data json.RawMessage) {
	var msg struct {
		OrderID    string `json:"orderId"`
		SenderID   string `json:"senderId"`
		SenderType string `json:"senderType"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	r.EmitToOrder(msg.OrderID, EventChatMessage, stamped(map[string]interface{}{
		"senderId":   msg.SenderID,
		"senderType": msg.SenderType,
		"message":    msg.Message,
	}))
}

// removeLocked drops the client from all rooms; caller holds the lock
func (r *Relay) removeLocked(c *Client) {
	for room := range r.members[c] {
		delete(r.rooms[room], c)
		if len(r.rooms[room]) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(r.members, c)
}

// decodeID accepts both a bare JSON string and an {"id": ...} object,
// matching what the dashboard and the mobile clients send
func decodeID(data json.RawMessage) (string, bool) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil && id != "" {
		return id, true
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.ID != "" {
		return obj.ID, true
	}

	return "", false
}

func stamped(payload map[string]interface{}) map[string]interface{} {
	payload["timestamp"] = time.Now().UTC()
	return payload
}
