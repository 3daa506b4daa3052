// Package api provides HTTP handlers for the SkateSpot API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/onnwee/skatespot/internal/auth"
	"github.com/onnwee/skatespot/internal/middleware"
	"github.com/onnwee/skatespot/internal/session"
	"github.com/onnwee/skatespot/internal/user"
)

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the JSON shape returned after register and login.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthHandlers holds dependencies for the register/login/logout handlers.
type AuthHandlers struct {
	creds    *auth.CredentialService
	tokens   *auth.TokenService
	sessions session.Store
	metrics  *middleware.Metrics

	cookieTTL     time.Duration
	secureCookies bool
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(creds *auth.CredentialService, tokens *auth.TokenService, sessions session.Store, metrics *middleware.Metrics, cookieTTL time.Duration, secureCookies bool) *AuthHandlers {
	return &AuthHandlers{
		creds:         creds,
		tokens:        tokens,
		sessions:      sessions,
		metrics:       metrics,
		cookieTTL:     cookieTTL,
		secureCookies: secureCookies,
	}
}

// Register handles POST /register.
//
// Validation failures return 400 with a message naming the first failed
// check; a taken username returns 409. On success the account is created
// and logged in immediately: the response carries the session cookie.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" {
		h.registerFailure(w, r, ErrCodeValidation, http.StatusBadRequest, "Must provide username")
		return
	}
	if req.Password == "" {
		h.registerFailure(w, r, ErrCodeValidation, http.StatusBadRequest, "Must provide password")
		return
	}
	if req.Password != req.Confirmation {
		h.registerFailure(w, r, ErrCodeValidation, http.StatusBadRequest, "Password and confirmation must match")
		return
	}

	u, err := h.creds.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			h.registerFailure(w, r, ErrCodeDuplicateUsername, http.StatusConflict, "Username is taken")
			return
		}
		slog.ErrorContext(r.Context(), "registration failed", "error", err)
		h.registerFailure(w, r, ErrCodeInternal, http.StatusInternalServerError, "Something went wrong")
		return
	}

	// Auto-login: a fresh account goes straight into an authenticated session.
	if !h.establishSession(w, r, u) {
		return
	}

	if h.metrics != nil {
		h.metrics.IncAuthAttempt("register", "success")
	}
	writeJSON(w, http.StatusCreated, UserResponse{ID: u.ID, Username: u.Username})
}

// Login handles POST /login.
//
// Unknown username and wrong password are indistinguishable to the caller.
// Any session the caller already holds is cleared before the new one is
// established.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.clearExistingSession(r)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" {
		h.loginFailure(w, r, ErrCodeValidation, http.StatusBadRequest, "Must provide username")
		return
	}
	if req.Password == "" {
		h.loginFailure(w, r, ErrCodeValidation, http.StatusBadRequest, "Must provide password")
		return
	}

	u, ok, err := h.creds.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "credential verification failed", "error", err)
		h.loginFailure(w, r, ErrCodeInternal, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if !ok {
		h.loginFailure(w, r, ErrCodeInvalidCredentials, http.StatusUnauthorized, "Invalid username and/or password")
		return
	}

	if !h.establishSession(w, r, u) {
		return
	}

	if h.metrics != nil {
		h.metrics.IncAuthAttempt("login", "success")
	}
	writeJSON(w, http.StatusOK, UserResponse{ID: u.ID, Username: u.Username})
}

// Logout handles POST /logout.
//
// The server-side session is deleted and the cookie expired, so the old
// cookie no longer grants access even if the client keeps it. Always
// redirects to the login page, session or not.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearExistingSession(r)
	http.SetCookie(w, middleware.ExpiredSessionCookie(h.secureCookies))
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// establishSession creates the server-side session and sets the signed
// cookie. Reports false after writing an error response on failure.
func (h *AuthHandlers) establishSession(w http.ResponseWriter, r *http.Request, u *user.User) bool {
	sess, err := h.sessions.Create(r.Context(), u.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create session", "error", err, "user_id", u.ID)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
		return false
	}

	token, err := h.tokens.Generate(sess.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to sign session token", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Something went wrong")
		return false
	}

	http.SetCookie(w, middleware.NewSessionCookie(token, h.cookieTTL, h.secureCookies))

	ctx := middleware.SetUserID(r.Context(), u.ID)
	middleware.UpdateResponseContext(w, ctx)
	return true
}

// clearExistingSession deletes whatever live session the request's cookie
// points at. Invalid or absent cookies are ignored.
func (h *AuthHandlers) clearExistingSession(r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil {
		return
	}
	sessionID, err := h.tokens.Validate(cookie.Value)
	if err != nil {
		return
	}
	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		slog.WarnContext(r.Context(), "failed to delete session", "error", err)
	}
}

func (h *AuthHandlers) registerFailure(w http.ResponseWriter, r *http.Request, code string, status int, message string) {
	if h.metrics != nil {
		h.metrics.IncAuthAttempt("register", "failure")
	}
	ctx := middleware.SetErrorCode(r.Context(), code)
	WriteError(w, ctx, status, code, message)
}

func (h *AuthHandlers) loginFailure(w http.ResponseWriter, r *http.Request, code string, status int, message string) {
	if h.metrics != nil {
		h.metrics.IncAuthAttempt("login", "failure")
	}
	ctx := middleware.SetErrorCode(r.Context(), code)
	WriteError(w, ctx, status, code, message)
}
