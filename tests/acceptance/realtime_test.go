package acceptance

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rigzlion8/watermaji/internal/dto"
	"github.com/rigzlion8/watermaji/internal/relay"
	"github.com/rigzlion8/watermaji/internal/utils"
)

func (s *Suite) wsURL(query string) string {
	return "ws" + strings.TrimPrefix(s.BaseURL, "http") + "/ws" + query
}

func (s *Suite) dialWS(token string) *websocket.Conn {
	conn, resp, err := websocket.DefaultDialer.Dial(s.wsURL("?token="+token), nil)
	s.Require().NoError(err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

// seedAdmin inserts an admin user directly and returns its credentials
func (s *Suite) seedAdmin() (string, string) {
	email := "admin@example.com"
	password := "AdminPassword123"

	hash, err := utils.HashPassword(password, 4)
	s.Require().NoError(err)

	_, err = s.Postgres.DB.Exec(`
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, auth_provider, is_email_verified, is_active)
		VALUES ($1, 'Admin', 'User', $2, $3, 'admin', 'local', TRUE, TRUE)`,
		uuid.New().String(), email, hash,
	)
	s.Require().NoError(err)

	return email, password
}

func (s *Suite) TestWebSocket_RejectsMissingToken() {
	_, resp, err := websocket.DefaultDialer.Dial(s.wsURL(""), nil)
	s.Error(err)
	if resp != nil {
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	}
}

func (s *Suite) TestWebSocket_ConnectsWithToken() {
	s.register("ws@example.com", "Password123")
	accessToken, _ := s.login("ws@example.com", "Password123")

	conn := s.dialWS(accessToken)
	defer conn.Close()
}

func (s *Suite) TestNotification_DeliveredToJoinedUser() {
	s.register("notify@example.com", "Password123")
	userToken, _ := s.login("notify@example.com", "Password123")

	profileResp := s.authorizedRequest("GET", "/api/auth/profile", userToken, nil)
	env := s.decodeEnvelope(profileResp)
	profileResp.Body.Close()

	var payload userPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	userID := payload.User.ID

	conn := s.dialWS(userToken)
	defer conn.Close()

	join, err := json.Marshal(relay.Envelope{
		Event: relay.EventJoinUserRoom,
		Data:  json.RawMessage(`"` + userID + `"`),
	})
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, join))

	adminEmail, adminPassword := s.seedAdmin()
	adminToken, _ := s.login(adminEmail, adminPassword)

	// The join is handled asynchronously; retry the send until the
	// notification lands or the deadline passes
	deadline := time.Now().Add(3 * time.Second)
	for {
		sendResp := s.authorizedRequest("POST", "/api/notifications/send", adminToken, dto.SendNotificationRequest{
			OrderID: "order-1",
			UserID:  userID,
			Message: "your water is on the way",
			Type:    "dispatch",
		})
		sendResp.Body.Close()
		s.Require().Equal(http.StatusOK, sendResp.StatusCode)

		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		_, message, err := conn.ReadMessage()
		if err == nil {
			var received relay.Envelope
			s.Require().NoError(json.Unmarshal(message, &received))
			s.Equal(relay.EventDeliveryNotification, received.Event)

			var data map[string]interface{}
			s.Require().NoError(json.Unmarshal(received.Data, &data))
			s.Equal("your water is on the way", data["message"])
			s.Equal("order-1", data["orderId"])
			s.Contains(data, "timestamp")
			return
		}
		if time.Now().After(deadline) {
			s.FailNow("notification never reached the joined user")
		}
	}
}

func (s *Suite) TestNotification_RequiresAdminRole() {
	s.register("customer-send@example.com", "Password123")
	customerToken, _ := s.login("customer-send@example.com", "Password123")

	resp := s.authorizedRequest("POST", "/api/notifications/send", customerToken, dto.SendNotificationRequest{
		Message: "not allowed",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestNotification_RequiresAuth() {
	resp := s.postJSON("/api/notifications/send", dto.SendNotificationRequest{
		Message: "anonymous",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
