package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/feed"
	"github.com/blog-content-api/internal/metrics"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/publish"
	"github.com/blog-content-api/internal/render"
	"github.com/blog-content-api/internal/repository"
	"github.com/blog-content-api/internal/validation"
)

type postService struct {
	repo      repository.PostRepository
	renderer  *render.Renderer
	validator *validation.Validator
	feed      *feed.Builder
	metrics   *metrics.Recorder
	now       func() time.Time
	log       zerolog.Logger
}

func newPostService(
	repo repository.PostRepository,
	renderer *render.Renderer,
	validator *validation.Validator,
	builder *feed.Builder,
	recorder *metrics.Recorder,
	now func() time.Time,
	log zerolog.Logger,
) *postService {
	return &postService{
		repo:      repo,
		renderer:  renderer,
		validator: validator,
		feed:      builder,
		metrics:   recorder,
		now:       now,
		log:       log.With().Str("service", "posts").Logger(),
	}
}

// NewPostService builds a PostService with an explicit clock, for tests and tooling
func NewPostService(repo repository.PostRepository, builder *feed.Builder, recorder *metrics.Recorder, now func() time.Time, log zerolog.Logger) PostService {
	return newPostService(repo, render.New(), validation.NewValidator(), builder, recorder, now, log)
}

// ListPublished returns the publicly visible posts, newest first
func (s *postService) ListPublished(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.repo.List(ctx)
	s.metrics.IncOperation("list", err)
	if err != nil {
		return nil, err
	}
	visible := publish.FilterPublished(posts, s.now())
	views := make([]models.PostView, 0, len(visible))
	for _, p := range visible {
		views = append(views, s.view(p, ""))
	}
	return views, nil
}

// ListAll returns every post with its status, newest first
func (s *postService) ListAll(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.repo.List(ctx)
	s.metrics.IncOperation("list_all", err)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, s.view(p, publish.Status(p, now)))
	}
	return views, nil
}

// GetPublished returns a post only if it is publicly visible. Unpublished
// posts are reported as not found so their existence is not revealed.
func (s *postService) GetPublished(ctx context.Context, id string) (*models.PostView, error) {
	post, err := s.repo.GetByID(ctx, id)
	s.metrics.IncOperation("get", err)
	if err != nil {
		return nil, err
	}
	if !publish.IsPublished(post, s.now()) {
		return nil, apperr.NotFound("post not found")
	}
	view := s.view(post, "")
	return &view, nil
}

// GetForAdmin returns any post along with the raw file and Markdown body
func (s *postService) GetForAdmin(ctx context.Context, id string) (*models.AdminPostView, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err == nil {
		var raw string
		raw, err = s.repo.ReadRaw(ctx, id)
		if err == nil {
			s.metrics.IncOperation("get_admin", nil)
			return &models.AdminPostView{
				PostView: s.view(post, publish.Status(post, s.now())),
				Raw:      raw,
				Body:     post.Body,
			}, nil
		}
	}
	s.metrics.IncOperation("get_admin", err)
	return nil, err
}

// Create validates req and stores a new post
func (s *postService) Create(ctx context.Context, req *models.CreatePostRequest) (string, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		return "", err
	}
	id, err := s.repo.Create(ctx, req)
	s.metrics.IncOperation("create", err)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update validates req and merges it over the stored post
func (s *postService) Update(ctx context.Context, id string, req *models.UpdatePostRequest) error {
	if err := s.validator.ValidateUpdate(req); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, req)
	s.metrics.IncOperation("update", err)
	return err
}

// Delete removes a post
func (s *postService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	s.metrics.IncOperation("delete", err)
	return err
}

// Feed renders the RSS document for the published posts
func (s *postService) Feed(ctx context.Context) ([]byte, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		s.metrics.IncOperation("feed", err)
		return nil, err
	}
	visible := publish.FilterPublished(posts, s.now())
	for _, p := range visible {
		p.ContentHTML = s.renderer.HTML(p.Body)
	}
	out, err := s.feed.Build(visible)
	s.metrics.IncOperation("feed", err)
	if err != nil {
		return nil, apperr.Internal("build feed", err)
	}
	s.log.Debug().Int("items", len(visible)).Msg("Feed built")
	return out, nil
}

func (s *postService) view(p *models.Post, status models.PostStatus) models.PostView {
	post := *p
	post.ContentHTML = s.renderer.HTML(p.Body)
	return models.PostView{
		Post:           post,
		Status:         status,
		ReadingMinutes: render.ReadingMinutes(p.Body),
	}
}
