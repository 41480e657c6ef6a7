// Package auth guards admin operations. Two credential strategies share one
// Authenticate contract: a trusted header carrying the admin secret (used for
// server-to-server calls) and a browser session cookie, which additionally
// needs a matching anti-forgery token on state-changing requests.
package auth

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/config"
)

const (
	SessionCookie = "admin_token"
	CSRFCookie    = "admin_csrf"
	TokenHeader   = "X-Admin-Token"
	CSRFHeader    = "X-CSRF-Token"
)

// Method names the strategy that authenticated a request
type Method string

const (
	MethodNone    Method = ""
	MethodHeader  Method = "header"
	MethodSession Method = "session"
)

// Decision is the outcome of Authenticate. Err is a kinded apperr error whenever
// Authenticated is false.
type Decision struct {
	Authenticated bool
	Method        Method
	Err           error
}

// Guard validates admin credentials and manages the session cookies
type Guard struct {
	secret   string
	secure   bool
	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

// NewGuard creates a guard from the auth configuration
func NewGuard(cfg config.AuthConfig) *Guard {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Guard{
		secret:   cfg.AdminToken,
		secure:   cfg.SecureCookie,
		ttl:      ttl,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// Secret returns the configured admin secret for trusted internal forwarding
func (g *Guard) Secret() string {
	return g.secret
}

// Configured reports whether an admin secret is set
func (g *Guard) Configured() bool {
	return g.secret != ""
}

// Authenticate decides whether r carries admin credentials.
// Without a configured secret every request is denied as misconfigured.
func (g *Guard) Authenticate(r *http.Request) Decision {
	if !g.Configured() {
		return Decision{Err: apperr.Misconfigured("server misconfigured: admin token not set")}
	}

	if provided := r.Header.Get(TokenHeader); provided != "" && g.matches(provided) {
		return Decision{Authenticated: true, Method: MethodHeader}
	}

	session, ok := cookieValue(r, SessionCookie)
	if !ok || !g.matches(session) {
		return Decision{Err: apperr.Unauthorized("unauthorized")}
	}

	if !IsSafeMethod(r.Method) && !validCSRF(r) {
		return Decision{Method: MethodSession, Err: apperr.Forbidden("invalid csrf token")}
	}
	return Decision{Authenticated: true, Method: MethodSession}
}

// Login checks candidate against the admin secret and, on success, issues the
// session cookie and a fresh CSRF cookie. The CSRF token is also returned.
func (g *Guard) Login(w http.ResponseWriter, candidate string) (string, error) {
	if !g.Configured() {
		return "", apperr.Misconfigured("server misconfigured: admin token not set")
	}
	if candidate == "" {
		return "", apperr.Validation("token is required")
	}
	if !g.matches(candidate) {
		return "", apperr.Unauthorized("invalid token")
	}

	csrf := g.newToken()
	expires := g.now().Add(g.ttl)
	maxAge := int(g.ttl / time.Second)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    url.QueryEscape(g.secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Expires:  expires,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    csrf,
		Path:     "/",
		HttpOnly: false,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Expires:  expires,
	})
	return csrf, nil
}

// Logout expires both cookies regardless of the current session state
func (g *Guard) Logout(w http.ResponseWriter) {
	for _, c := range []struct {
		name     string
		httpOnly bool
	}{{SessionCookie, true}, {CSRFCookie, false}} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     "/",
			HttpOnly: c.httpOnly,
			Secure:   g.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
		})
	}
}

// IsSafeMethod reports whether method is read-only
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

func (g *Guard) matches(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) == 1
}

func validCSRF(r *http.Request) bool {
	cookie, ok := cookieValue(r, CSRFCookie)
	header := r.Header.Get(CSRFHeader)
	if !ok || cookie == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}

func cookieValue(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", false
	}
	return v, true
}
