package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/auth"
	"github.com/blog-content-api/internal/metrics"
	"github.com/blog-content-api/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, guard *auth.Guard, recorder *metrics.Recorder, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, recorder))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.NoMethod(methodNotAllowed(router))

	// Handlers
	postHandler := NewPostHandler(services, guard, log)
	adminHandler := NewAdminHandler(services, guard, router, log)
	feedHandler := NewFeedHandler(services, log)
	requireAdmin := adminMiddleware(guard, log)

	// Operational
	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	// Public reads and store-mutating endpoints
	posts := router.Group("/posts")
	{
		posts.GET("", postHandler.ListPosts)
		posts.GET("/:id", postHandler.GetPost)
		posts.POST("", requireAdmin, postHandler.CreatePost)
		posts.PUT("/:id", requireAdmin, postHandler.UpdatePost)
		posts.DELETE("/:id", requireAdmin, postHandler.DeletePost)
	}

	router.GET("/feed.xml", feedHandler.GetFeed)

	// Admin session and proxy
	admin := router.Group("/admin")
	{
		admin.POST("/login", adminHandler.Login)
		admin.POST("/logout", adminHandler.Logout)
		admin.GET("/session", adminHandler.Session)

		admin.GET("/posts", requireAdmin, adminHandler.ListPosts)
		admin.POST("/posts", requireAdmin, adminHandler.ProxyCreate)
		admin.PUT("/posts/:id", requireAdmin, adminHandler.ProxyUpdate)
		admin.DELETE("/posts/:id", requireAdmin, adminHandler.ProxyDelete)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "blog-content-api",
	})
}
