package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/skatespot/internal/session"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "skatespot_session"

// LoginPath is where unauthenticated callers are redirected.
const LoginPath = "/login"

// TokenValidator validates a session cookie token and returns the session ID.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireUser is the session guard: it wraps every data-bearing route with
// the same check. A request passes only when it carries a valid session
// cookie whose session is still live in the store; everything else is
// redirected to the login page without the wrapped handler running.
//
// On success the authenticated user ID is injected into the request context
// (readable via GetUserID) and reported to the logging middleware.
func RequireUser(tokens TokenValidator, sessions session.Store, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				rejectUnauthenticated(w, r, metrics)
				return
			}

			sessionID, err := tokens.Validate(cookie.Value)
			if err != nil {
				rejectUnauthenticated(w, r, metrics)
				return
			}

			sess, err := sessions.Get(r.Context(), sessionID)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					slog.Error("session lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())))
				}
				rejectUnauthenticated(w, r, metrics)
				return
			}

			ctx := SetUserID(r.Context(), sess.UserID)
			UpdateResponseContext(w, ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectUnauthenticated redirects to the login page. The wrapped handler is
// never invoked, so no data access happens for unauthenticated callers.
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, metrics *Metrics) {
	if metrics != nil {
		metrics.IncGuardRejection()
	}
	ctx := SetErrorCode(r.Context(), "unauthenticated")
	UpdateResponseContext(w, ctx)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// NewSessionCookie builds the session cookie for a freshly signed token.
// HttpOnly keeps it out of script reach; SameSite=Lax still sends it on
// top-level navigation. Secure is off only outside production.
func NewSessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds the cookie that clears the session on logout.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
