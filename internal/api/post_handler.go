package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/auth"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
)

// PostHandler serves public reads and the store-mutating endpoints
type PostHandler struct {
	services *service.Services
	guard    *auth.Guard
	log      zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(services *service.Services, guard *auth.Guard, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		services: services,
		guard:    guard,
		log:      log.With().Str("handler", "posts").Logger(),
	}
}

// ListPosts handles GET /posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.services.Posts.ListPublished(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /posts/:id.
// Authenticated callers get any post with its raw file for editing; everyone
// else only sees published posts.
func (h *PostHandler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if h.guard.Authenticate(c.Request).Authenticated {
		post, err := h.services.Posts.GetForAdmin(ctx, id)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, post)
		return
	}

	post, err := h.services.Posts.GetPublished(ctx, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	id, err := h.services.Posts.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.log.Info().Str("post_id", id).Str("auth", c.GetString(authMethodKey)).Msg("Post created")
	c.JSON(http.StatusCreated, models.CreatePostResponse{ID: id})
}

// UpdatePost handles PUT /posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdatePostRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	if err := h.services.Posts.Update(c.Request.Context(), id, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeletePost handles DELETE /posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.services.Posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
