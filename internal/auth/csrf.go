package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader carries the CSRF token in both directions: it is set on
// every response of a session-authenticated client and must be echoed back on
// unsafe requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFMiddleware protects cookie-authenticated requests. Requests that carry
// an Authorization header or no session cookie have no ambient credentials
// and skip the check.
func CSRFMiddleware(secret []byte, secure bool, sessions *SessionManager) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if _, ok := TokenFromHeader(c.GetHeader("Authorization")); ok {
			c.Next()
			return
		}
		if sessions == nil || !sessions.HasSessionCookie(c.Request) {
			c.Next()
			return
		}

		request := c.Request
		if !secure {
			request = csrf.PlaintextHTTPRequest(request)
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Header(CSRFTokenHeader, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, request)

		// The error handler already wrote the response.
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
}
