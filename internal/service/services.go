package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/feed"
	"github.com/blog-content-api/internal/metrics"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/render"
	"github.com/blog-content-api/internal/repository"
	"github.com/blog-content-api/internal/validation"
)

// PostService defines the content operations used by the API and the CLI
type PostService interface {
	ListPublished(ctx context.Context) ([]models.PostView, error)
	ListAll(ctx context.Context) ([]models.PostView, error)
	GetPublished(ctx context.Context, id string) (*models.PostView, error)
	GetForAdmin(ctx context.Context, id string) (*models.AdminPostView, error)
	Create(ctx context.Context, req *models.CreatePostRequest) (string, error)
	Update(ctx context.Context, id string, req *models.UpdatePostRequest) error
	Delete(ctx context.Context, id string) error
	Feed(ctx context.Context) ([]byte, error)
}

// Services holds all service interfaces
type Services struct {
	Posts PostService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, recorder *metrics.Recorder, log zerolog.Logger) *Services {
	builder := feed.NewBuilder(feed.Channel{
		SiteURL:     cfg.Feed.SiteURL,
		Title:       cfg.Feed.Title,
		Description: cfg.Feed.Description,
	})
	return &Services{
		Posts: newPostService(repos.Post, render.New(), validation.NewValidator(), builder, recorder, time.Now, log),
	}
}
