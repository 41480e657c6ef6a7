package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/auth"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
	"github.com/blog-content-api/internal/validation"
)

// AdminHandler handles the admin session and forwards editor mutations to
// the store endpoints
type AdminHandler struct {
	services  *service.Services
	guard     *auth.Guard
	engine    *gin.Engine
	validator *validation.Validator
	log       zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler. engine is used to dispatch
// forwarded requests in-process.
func NewAdminHandler(services *service.Services, guard *auth.Guard, engine *gin.Engine, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services:  services,
		guard:     guard,
		engine:    engine,
		validator: validation.NewValidator(),
		log:       log.With().Str("handler", "admin").Logger(),
	}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	if !h.guard.Configured() {
		writeError(c, h.log, apperr.Misconfigured("server misconfigured: admin token not set"))
		return
	}

	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.validator.ValidateLogin(&req); err != nil {
		writeError(c, h.log, apperr.Validation("token is required"))
		return
	}

	csrf, err := h.guard.Login(c.Writer, req.Token)
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			h.log.Warn().Str("client_ip", c.ClientIP()).Msg("Admin login failed")
		}
		writeError(c, h.log, err)
		return
	}

	h.log.Info().Str("client_ip", c.ClientIP()).Msg("Admin logged in")
	c.JSON(http.StatusOK, gin.H{"ok": true, "csrfToken": csrf})
}

// Logout handles POST /admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	h.guard.Logout(c.Writer)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Session handles GET /admin/session
func (h *AdminHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"loggedIn": h.guard.Authenticate(c.Request).Authenticated})
}

// ListPosts handles GET /admin/posts
func (h *AdminHandler) ListPosts(c *gin.Context) {
	posts, err := h.services.Posts.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ProxyCreate handles POST /admin/posts
func (h *AdminHandler) ProxyCreate(c *gin.Context) {
	h.forward(c, "/posts")
}

// ProxyUpdate handles PUT /admin/posts/:id
func (h *AdminHandler) ProxyUpdate(c *gin.Context) {
	h.forward(c, "/posts/"+c.Param("id"))
}

// ProxyDelete handles DELETE /admin/posts/:id
func (h *AdminHandler) ProxyDelete(c *gin.Context) {
	h.forward(c, "/posts/"+c.Param("id"))
}

// forward re-dispatches an already authenticated request to the store
// endpoint at path, carrying the admin secret as a trusted header. The
// request keeps its method and body.
func (h *AdminHandler) forward(c *gin.Context, path string) {
	h.log.Debug().Str("from", c.Request.URL.Path).Str("to", path).Msg("Forwarding admin request")

	c.Request.URL.Path = path
	c.Request.URL.RawPath = ""
	c.Request.Header.Set(auth.TokenHeader, h.guard.Secret())

	h.engine.HandleContext(c)
	// the outer chain must not resume over the forwarded route's handlers
	c.Abort()
}
