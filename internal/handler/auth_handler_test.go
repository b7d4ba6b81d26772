package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MHammad33/error-tracker/internal/model"
)

type mockAuthService struct {
	loginURLFunc       func(state string) string
	handleCallbackFunc func(ctx context.Context, code string) (*model.Session, error)
	logoutFunc         func(ctx context.Context, sessionID string) error
	currentUserFunc    func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	return m.loginURLFunc(state)
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	return m.handleCallbackFunc(ctx, code)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.logoutFunc(ctx, sessionID)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	return m.currentUserFunc(ctx, sessionID)
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "https://tracker.example.com",
		SessionMaxAge: 3600,
	}
}

func TestAuthLogin_RedirectsWithState(t *testing.T) {
	svc := &mockAuthService{
		loginURLFunc: func(state string) string {
			return "https://accounts.google.com/o/oauth2/auth?state=" + state
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://accounts.google.com/") {
		t.Errorf("Location = %q, want Google auth URL", location)
	}

	// stateがCookieに保存されリダイレクトURLと一致する
	var stateCookie string
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthStateCookie {
			stateCookie = c.Value
		}
	}
	if stateCookie == "" {
		t.Fatal("oauth_state cookie should be set")
	}
	if !strings.HasSuffix(location, stateCookie) {
		t.Error("redirect state should match cookie state")
	}
}

func TestAuthCallback_SetsSessionCookie(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFunc: func(ctx context.Context, code string) (*model.Session, error) {
			return &model.Session{
				ID:        "sess-1",
				UserID:    "user-1",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "xyz"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}

	var sessionValue string
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionValue = c.Value
			if !c.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
		}
	}
	if sessionValue != "sess-1" {
		t.Errorf("session cookie = %q, want sess-1", sessionValue)
	}
}

func TestAuthCallback_StateMismatch(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=auth-code&state=attacker", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "legitimate"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthCallback_MissingCode(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "xyz"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthLogout_ClearsCookie(t *testing.T) {
	var loggedOut string
	svc := &mockAuthService{
		logoutFunc: func(ctx context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if loggedOut != "sess-1" {
		t.Errorf("logged out session = %q, want sess-1", loggedOut)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie should be cleared")
	}
}

func TestAuthMe_ReturnsUserWithImage(t *testing.T) {
	svc := &mockAuthService{
		currentUserFunc: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{
				ID:    "user-1",
				Email: "taro@example.com",
				Name:  "Taro",
				Image: "https://lh3.googleusercontent.com/a/photo.jpg",
			}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["name"] != "Taro" {
		t.Errorf("name = %q, want Taro", resp["name"])
	}
	if resp["image"] != "https://lh3.googleusercontent.com/a/photo.jpg" {
		t.Errorf("image = %q, want Google picture URL", resp["image"])
	}
}

func TestAuthMe_NoSessionCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
