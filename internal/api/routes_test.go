package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/skatespot/internal/auth"
	"github.com/onnwee/skatespot/internal/middleware"
	"github.com/onnwee/skatespot/internal/park"
	"github.com/onnwee/skatespot/internal/review"
	"github.com/onnwee/skatespot/internal/session"
	"github.com/onnwee/skatespot/internal/user"
)

// newTestServer assembles the full stack the way cmd/api does, on in-memory
// implementations: router, guard, request ID and logging middleware.
func newTestServer(t *testing.T) (*httptest.Server, *park.InMemoryRepository) {
	t.Helper()

	users := user.NewInMemoryRepository()
	creds := auth.NewCredentialService(users, nil)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	sessions := session.NewInMemoryStore(time.Hour)

	parks := park.NewInMemoryRepository()
	parks.SeedPark(park.Park{PlaceID: "place-burnside", Name: "Burnside Skatepark", LocationLat: 45.523, LocationLong: -122.664})

	reviews := review.NewInMemoryRepository()
	reviews.SeedRow(review.Row{Name: "Burnside Skatepark", PlaceID: "place-burnside", Author: "alice", Rating: 5, Text: "legendary"})

	mux := NewRouter(RouterConfig{
		Auth:         NewAuthHandlers(creds, tokens, sessions, nil, time.Hour, false),
		Parks:        NewParkHandlers(parks),
		Reviews:      NewReviewHandlers(reviews),
		ClientConfig: NewClientConfigHandlers("test-maps-key"),
		Health:       NewHealthHandlers(HealthHandlersConfig{}),
		Guard:        middleware.RequireUser(tokens, sessions, nil),
	})

	logger := middleware.NewLogger("test")
	handler := middleware.RequestID(middleware.Logging(logger)(mux))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, parks
}

// noRedirectClient keeps 303s visible instead of following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func registerUser(t *testing.T, srv *httptest.Server, username, password string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(RegisterRequest{Username: username, Password: password, Confirmation: password})
	resp, err := http.Post(srv.URL+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("register response carried no session cookie")
	return nil
}

func TestRouter_GuardCoversEveryDataRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	client := noRedirectClient()

	dataRoutes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/parks"},
		{http.MethodGet, "/parks/saved"},
		{http.MethodPost, "/parks/saved"},
		{http.MethodDelete, "/parks/saved/place-burnside"},
		{http.MethodGet, "/reviews"},
		{http.MethodGet, "/config"},
	}

	for _, route := range dataRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req, err := http.NewRequest(route.method, srv.URL+route.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := client.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusSeeOther {
				t.Fatalf("expected 303 without a session, got %d", resp.StatusCode)
			}
			if loc := resp.Header.Get("Location"); loc != middleware.LoginPath {
				t.Errorf("expected redirect to %s, got %s", middleware.LoginPath, loc)
			}
		})
	}
}

func TestRouter_AuthenticatedFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	client := noRedirectClient()
	cookie := registerUser(t, srv, "tony", "hawk900")

	doWithCookie := func(method, path string, body []byte) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		req.AddCookie(cookie)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	// Catalog
	resp := doWithCookie(http.MethodGet, "/parks", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /parks: expected 200, got %d", resp.StatusCode)
	}
	var parks []park.Park
	if err := json.NewDecoder(resp.Body).Decode(&parks); err != nil {
		t.Fatalf("failed to decode parks: %v", err)
	}
	resp.Body.Close()
	if len(parks) != 1 {
		t.Fatalf("expected 1 park, got %d", len(parks))
	}

	// Save, then read back
	resp = doWithCookie(http.MethodPost, "/parks/saved", []byte(`{"place_id":"place-burnside"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /parks/saved: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doWithCookie(http.MethodGet, "/parks/saved", nil)
	var saved []park.Park
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("failed to decode saved parks: %v", err)
	}
	resp.Body.Close()
	if len(saved) != 1 || saved[0].PlaceID != "place-burnside" {
		t.Fatalf("expected the saved park, got %+v", saved)
	}

	// Unsave via path parameter
	resp = doWithCookie(http.MethodDelete, "/parks/saved/place-burnside", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Reviews grouped by name
	resp = doWithCookie(http.MethodGet, "/reviews", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /reviews: expected 200, got %d", resp.StatusCode)
	}
	var grouped map[string][]review.Entry
	if err := json.NewDecoder(resp.Body).Decode(&grouped); err != nil {
		t.Fatalf("failed to decode reviews: %v", err)
	}
	resp.Body.Close()
	if len(grouped["Burnside Skatepark"]) != 1 {
		t.Errorf("expected 1 grouped review, got %v", grouped)
	}

	// Front-end bootstrap config
	resp = doWithCookie(http.MethodGet, "/config", nil)
	var cc ClientConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		t.Fatalf("failed to decode client config: %v", err)
	}
	resp.Body.Close()
	if cc.MapsAPIKey != "test-maps-key" {
		t.Errorf("expected maps key test-maps-key, got %q", cc.MapsAPIKey)
	}
}

func TestRouter_LogoutRevokesCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	client := noRedirectClient()
	cookie := registerUser(t, srv, "tony", "hawk900")

	// Sanity: cookie works
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/parks", nil)
	req.AddCookie(cookie)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", resp.StatusCode)
	}

	// Logout
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/logout", nil)
	req.AddCookie(cookie)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 from logout, got %d", resp.StatusCode)
	}

	// The old cookie must no longer grant access
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/parks", nil)
	req.AddCookie(cookie)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected 303 after logout, got %d", resp.StatusCode)
	}
}

func TestRouter_UnknownRouteReturnsEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/no-such-route")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var envelope ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Error.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, envelope.Error.Code)
	}
}
