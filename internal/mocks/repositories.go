package mocks

import (
	"context"
	"fmt"
	"sort"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
)

// MockPostRepository is an in-memory implementation of PostRepository
type MockPostRepository struct {
	Posts       map[string]*models.Post
	Raw         map[string]string
	ListError   error
	CreateError error
	NextID      int
	UpdateCalls int
	DeleteCalls int
}

// Verify interface compliance
var _ repository.PostRepository = (*MockPostRepository)(nil)

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		Posts:  make(map[string]*models.Post),
		Raw:    make(map[string]string),
		NextID: 100000000,
	}
}

// Add stores a copy of p keyed by its id
func (m *MockPostRepository) Add(p *models.Post) {
	cp := *p
	m.Posts[p.ID] = &cp
	m.Raw[p.ID] = "---\ntitle: \"" + p.Title + "\"\n---\n" + p.Body
}

func (m *MockPostRepository) ListIDs(ctx context.Context) ([]string, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	ids := make([]string, 0, len(m.Posts))
	for id := range m.Posts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	p, ok := m.Posts[id]
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	cp := *p
	return &cp, nil
}

func (m *MockPostRepository) ReadRaw(ctx context.Context, id string) (string, error) {
	raw, ok := m.Raw[id]
	if !ok {
		return "", apperr.NotFound("post not found")
	}
	return raw, nil
}

func (m *MockPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	ids, err := m.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		cp := *m.Posts[id]
		posts = append(posts, &cp)
	}
	repository.SortNewestFirst(posts)
	return posts, nil
}

func (m *MockPostRepository) Create(ctx context.Context, req *models.CreatePostRequest) (string, error) {
	if m.CreateError != nil {
		return "", m.CreateError
	}
	id := fmt.Sprintf("%d", m.NextID)
	m.NextID++
	p := &models.Post{
		ID:        id,
		Title:     req.Title,
		Excerpt:   req.Excerpt,
		Date:      req.Date,
		PublishAt: req.PublishAt,
		Tags:      req.Tags,
		Body:      req.Content,
	}
	if req.Draft != nil {
		p.Draft = *req.Draft
	}
	m.Add(p)
	return id, nil
}

func (m *MockPostRepository) Update(ctx context.Context, id string, req *models.UpdatePostRequest) error {
	m.UpdateCalls++
	p, ok := m.Posts[id]
	if !ok {
		return apperr.NotFound("post not found")
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Content != nil {
		p.Body = *req.Content
	}
	if req.Draft != nil {
		p.Draft = *req.Draft
	}
	if req.PublishAt != nil {
		p.PublishAt = *req.PublishAt
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}
	return nil
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	m.DeleteCalls++
	if _, ok := m.Posts[id]; !ok {
		return apperr.NotFound("post not found")
	}
	delete(m.Posts, id)
	delete(m.Raw, id)
	return nil
}
