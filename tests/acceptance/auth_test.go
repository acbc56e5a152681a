package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rigzlion8/watermaji/internal/dto"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type userPayload struct {
	User dto.UserProfile `json:"user"`
}

func (s *Suite) postJSON(path string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := http.Post(s.BaseURL+path, "application/json", bytes.NewBuffer(data))
	s.Require().NoError(err)
	return resp
}

func (s *Suite) decodeEnvelope(resp *http.Response) envelope {
	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	return env
}

// register creates a user and returns the register response envelope
func (s *Suite) register(email, password string) envelope {
	resp := s.postJSON("/api/auth/register", dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return s.decodeEnvelope(resp)
}

// login returns the access token and the refresh token cookies
func (s *Suite) login(email, password string) (string, []*http.Cookie) {
	resp := s.postJSON("/api/auth/login", dto.LoginRequest{
		Email:    email,
		Password: password,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	var data dto.LoginData
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	return data.AccessToken, resp.Cookies()
}

func (s *Suite) authorizedRequest(method, path, accessToken string, body interface{}) *http.Response {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestRegister_Success() {
	env := s.register("test@example.com", "Password123")

	s.True(env.Success)

	var payload userPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.NotEmpty(payload.User.ID)
	s.Equal("test@example.com", payload.User.Email)
	s.Equal("Test", payload.User.FirstName)
	s.False(payload.User.EmailVerified)

	// Password material must never appear in the response
	s.NotContains(string(env.Data), "Password123")
	s.NotContains(string(env.Data), "password_hash")
	s.NotContains(string(env.Data), "passwordHash")
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("duplicate@example.com", "Password123")

	resp := s.postJSON("/api/auth/register", dto.RegisterRequest{
		FirstName: "Other",
		LastName:  "User",
		Email:     "duplicate@example.com",
		Password:  "Password456",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	s.False(env.Success)
}

func (s *Suite) TestRegister_MissingFields() {
	resp := s.postJSON("/api/auth/register", map[string]string{
		"email": "incomplete@example.com",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_ShortPassword() {
	resp := s.postJSON("/api/auth/register", dto.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "short@example.com",
		Password:  "short12",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.register("login@example.com", "Password123")

	accessToken, cookies := s.login("login@example.com", "Password123")
	s.NotEmpty(accessToken)

	var refreshCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "refreshToken" {
			refreshCookie = c
		}
	}
	s.Require().NotNil(refreshCookie, "Should have refresh token cookie")
	s.NotEmpty(refreshCookie.Value)
	s.True(refreshCookie.HttpOnly)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.register("wrongpass@example.com", "Password123")

	resp := s.postJSON("/api/auth/login", dto.LoginRequest{
		Email:    "wrongpass@example.com",
		Password: "WrongPassword123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogin_UnknownUser() {
	resp := s.postJSON("/api/auth/login", dto.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "Password123",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_Success() {
	s.register("refresh@example.com", "Password123")
	_, cookies := s.login("refresh@example.com", "Password123")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/auth/refresh", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.NotEmpty(data.AccessToken)
}

func (s *Suite) TestRefresh_NoCookie() {
	resp, err := http.Post(s.BaseURL+"/api/auth/refresh", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_AfterLogoutFails() {
	s.register("logout-refresh@example.com", "Password123")
	accessToken, cookies := s.login("logout-refresh@example.com", "Password123")

	logoutResp := s.authorizedRequest("POST", "/api/auth/logout", accessToken, nil)
	logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/auth/refresh", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_SecondLoginInvalidatesFirstSession() {
	s.register("twologins@example.com", "Password123")
	_, firstCookies := s.login("twologins@example.com", "Password123")
	_, secondCookies := s.login("twologins@example.com", "Password123")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/auth/refresh", nil)
	for _, cookie := range firstCookies {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	req2, _ := http.NewRequest("POST", s.BaseURL+"/api/auth/refresh", nil)
	for _, cookie := range secondCookies {
		req2.AddCookie(cookie)
	}
	resp2, err := http.DefaultClient.Do(req2)
	s.Require().NoError(err)
	resp2.Body.Close()
	s.Equal(http.StatusOK, resp2.StatusCode)
}

func (s *Suite) TestGetProfile_Success() {
	s.register("profile@example.com", "Password123")
	accessToken, _ := s.login("profile@example.com", "Password123")

	resp := s.authorizedRequest("GET", "/api/auth/profile", accessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Cache-Control"), "no-store")

	env := s.decodeEnvelope(resp)
	var payload userPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Equal("profile@example.com", payload.User.Email)
	s.Equal("customer", string(payload.User.Role))
	s.NotZero(payload.User.CreatedAt)
}

func (s *Suite) TestGetProfile_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/auth/profile", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetProfile_InvalidToken() {
	resp := s.authorizedRequest("GET", "/api/auth/profile", "invalid-token", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestUpdateProfile_AllowListedFieldsOnly() {
	s.register("update@example.com", "Password123")
	accessToken, _ := s.login("update@example.com", "Password123")

	resp := s.authorizedRequest("PUT", "/api/auth/profile", accessToken, map[string]interface{}{
		"firstName": "Changed",
		"phone":     "+254700000000",
		// Fields outside the allow-list must be ignored
		"role":  "admin",
		"email": "other@example.com",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	env := s.decodeEnvelope(resp)
	var payload userPayload
	s.Require().NoError(json.Unmarshal(env.Data, &payload))
	s.Equal("Changed", payload.User.FirstName)
	s.Equal("User", payload.User.LastName)
	s.Equal("update@example.com", payload.User.Email)
	s.Equal("customer", string(payload.User.Role))
	s.Require().NotNil(payload.User.Phone)
	s.Equal("+254700000000", *payload.User.Phone)
}

func (s *Suite) TestChangePassword_Flow() {
	s.register("changepass@example.com", "Password123")
	accessToken, _ := s.login("changepass@example.com", "Password123")

	resp := s.authorizedRequest("POST", "/api/auth/change-password", accessToken, dto.ChangePasswordRequest{
		CurrentPassword: "Password123",
		NewPassword:     "NewPassword456",
	})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Old password is dead, new one works
	oldResp := s.postJSON("/api/auth/login", dto.LoginRequest{
		Email:    "changepass@example.com",
		Password: "Password123",
	})
	oldResp.Body.Close()
	s.Equal(http.StatusUnauthorized, oldResp.StatusCode)

	newResp := s.postJSON("/api/auth/login", dto.LoginRequest{
		Email:    "changepass@example.com",
		Password: "NewPassword456",
	})
	newResp.Body.Close()
	s.Equal(http.StatusOK, newResp.StatusCode)
}

func (s *Suite) TestChangePassword_WrongCurrent() {
	s.register("wrongcurrent@example.com", "Password123")
	accessToken, _ := s.login("wrongcurrent@example.com", "Password123")

	resp := s.authorizedRequest("POST", "/api/auth/change-password", accessToken, dto.ChangePasswordRequest{
		CurrentPassword: "NotMyPassword",
		NewPassword:     "NewPassword456",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestCompleteFlow() {
	email := "complete@example.com"
	password := "Password123"

	s.register(email, password)
	accessToken, cookies := s.login(email, password)

	profileResp := s.authorizedRequest("GET", "/api/auth/profile", accessToken, nil)
	profileResp.Body.Close()
	s.Equal(http.StatusOK, profileResp.StatusCode)

	refreshReq, _ := http.NewRequest("POST", s.BaseURL+"/api/auth/refresh", nil)
	for _, cookie := range cookies {
		refreshReq.AddCookie(cookie)
	}
	refreshResp, err := http.DefaultClient.Do(refreshReq)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, refreshResp.StatusCode)

	env := s.decodeEnvelope(refreshResp)
	refreshResp.Body.Close()
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))

	logoutResp := s.authorizedRequest("POST", "/api/auth/logout", data.AccessToken, nil)
	logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	// The access token stays valid until it expires; only refresh is revoked
	profileResp2 := s.authorizedRequest("GET", "/api/auth/profile", data.AccessToken, nil)
	profileResp2.Body.Close()
	s.Equal(http.StatusOK, profileResp2.StatusCode)
}
