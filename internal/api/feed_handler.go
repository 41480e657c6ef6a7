package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/feed"
	"github.com/blog-content-api/internal/service"
)

// FeedHandler serves the RSS feed
type FeedHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(services *service.Services, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		services: services,
		log:      log.With().Str("handler", "feed").Logger(),
	}
}

// GetFeed handles GET /feed.xml
func (h *FeedHandler) GetFeed(c *gin.Context) {
	out, err := h.services.Posts.Feed(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", feed.CacheControl)
	c.Data(http.StatusOK, feed.ContentType, out)
}
