package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/auth"
	"github.com/blog-content-api/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	authMethodKey   = "auth_method"
)

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(requestIDKey)).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": apperr.GenericMessage,
				})
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware tags every request with an id. An id already present on
// the request is kept so internally forwarded calls share it.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(requestIDHeader, id)
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware logs requests and feeds the request metrics
func loggingMiddleware(log zerolog.Logger, recorder *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		route := c.FullPath()
		requestID := c.GetString(requestIDKey)

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		recorder.ObserveRequest(c.Request.Method, route, statusCode, duration)

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", requestID).
			Msg("Request completed")
	}
}

// adminMiddleware rejects requests without admin credentials. Session
// cookies must come with a matching CSRF token on mutating methods.
func adminMiddleware(guard *auth.Guard, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("middleware", "admin").Logger()
	return func(c *gin.Context) {
		decision := guard.Authenticate(c.Request)
		if !decision.Authenticated {
			if apperr.Is(decision.Err, apperr.KindMisconfigured) {
				log.Error().Msg("Admin request rejected: admin token not configured")
			} else {
				log.Debug().
					Str("path", c.Request.URL.Path).
					Str("reason", string(apperr.KindOf(decision.Err))).
					Msg("Admin request rejected")
			}
			writeError(c, log, decision.Err)
			return
		}
		c.Set(authMethodKey, string(decision.Method))
		c.Next()
	}
}

// methodNotAllowed answers 405 with the methods registered for the path
func methodNotAllowed(router *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if allowed := allowedMethods(router.Routes(), c.Request.URL.Path); len(allowed) > 0 {
			c.Header("Allow", strings.Join(allowed, ", "))
		}
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	}
}

func allowedMethods(routes gin.RoutesInfo, path string) []string {
	seen := map[string]bool{}
	for _, r := range routes {
		if routeMatches(r.Path, path) {
			seen[r.Method] = true
		}
	}
	methods := make([]string, 0, len(seen))
	for m := range seen {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func routeMatches(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
