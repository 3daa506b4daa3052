package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/skatespot/internal/session"
)

// staticValidator maps one token to one session ID.
type staticValidator struct {
	token     string
	sessionID string
}

func (v staticValidator) Validate(token string) (string, error) {
	if token == v.token {
		return v.sessionID, nil
	}
	return "", errors.New("invalid token")
}

// protectedHandler records whether the guard let the request through.
func protectedHandler(called *bool, gotUserID *int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, ok := GetUserID(r.Context()); ok {
			*gotUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser_ValidSession(t *testing.T) {
	sessions := session.NewInMemoryStore(time.Hour)
	sess, err := sessions.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	validator := staticValidator{token: "good-token", sessionID: sess.ID}

	var called bool
	var gotUserID int64
	handler := RequireUser(validator, sessions, nil)(protectedHandler(&called, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/parks/saved", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatal("expected handler to be called")
	}
	if gotUserID != 7 {
		t.Errorf("expected user ID 7 in context, got %d", gotUserID)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestRequireUser_RedirectsWithoutHandler(t *testing.T) {
	sessions := session.NewInMemoryStore(time.Hour)
	sess, err := sessions.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	validator := staticValidator{token: "good-token", sessionID: sess.ID}

	tests := []struct {
		name    string
		request func() *http.Request
	}{
		{
			name: "no cookie",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/parks/saved", nil)
			},
		},
		{
			name: "invalid token",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/parks/saved", nil)
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
				return req
			},
		},
		{
			name: "token for unknown session",
			request: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/parks/saved", nil)
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
				return req
			},
		},
	}

	// stale-token validates but points at a session that no longer exists
	staleValidator := staticValidator{token: "stale-token", sessionID: "gone"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := TokenValidator(validator)
			if tt.name == "token for unknown session" {
				v = staleValidator
			}

			var called bool
			var gotUserID int64
			handler := RequireUser(v, sessions, nil)(protectedHandler(&called, &gotUserID))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, tt.request())

			if called {
				t.Error("handler must not run for unauthenticated requests")
			}
			if rr.Code != http.StatusSeeOther {
				t.Errorf("expected status 303, got %d", rr.Code)
			}
			if loc := rr.Header().Get("Location"); loc != LoginPath {
				t.Errorf("expected redirect to %s, got %s", LoginPath, loc)
			}
		})
	}
}

func TestRequireUser_DeletedSessionIsRejected(t *testing.T) {
	// Logging out deletes the server-side session; the cookie alone must
	// no longer grant access even though the token still validates.
	sessions := session.NewInMemoryStore(time.Hour)
	sess, err := sessions.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	validator := staticValidator{token: "good-token", sessionID: sess.ID}

	var called bool
	var gotUserID int64
	handler := RequireUser(validator, sessions, nil)(protectedHandler(&called, &gotUserID))

	makeRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/parks/saved", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	if rr := makeRequest(); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", rr.Code)
	}

	if err := sessions.Delete(context.Background(), sess.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	called = false
	if rr := makeRequest(); rr.Code != http.StatusSeeOther {
		t.Errorf("expected 303 after logout, got %d", rr.Code)
	}
	if called {
		t.Error("handler must not run after the session is deleted")
	}
}

func TestRequireUser_CountsRejections(t *testing.T) {
	sessions := session.NewInMemoryStore(time.Hour)
	metrics := NewMetrics()

	var called bool
	var gotUserID int64
	handler := RequireUser(staticValidator{}, sessions, metrics)(protectedHandler(&called, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/parks/saved", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
}

func TestNewSessionCookie(t *testing.T) {
	cookie := NewSessionCookie("token-value", 30*time.Minute, true)

	if cookie.Name != SessionCookieName {
		t.Errorf("expected name %s, got %s", SessionCookieName, cookie.Name)
	}
	if cookie.Value != "token-value" {
		t.Errorf("expected value token-value, got %s", cookie.Value)
	}
	if cookie.MaxAge != 1800 {
		t.Errorf("expected max age 1800, got %d", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Error("expected Secure cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("expected SameSite=Lax")
	}
}

func TestExpiredSessionCookie(t *testing.T) {
	cookie := ExpiredSessionCookie(false)

	if cookie.MaxAge != -1 {
		t.Errorf("expected max age -1, got %d", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Errorf("expected empty value, got %s", cookie.Value)
	}
}
