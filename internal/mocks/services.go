package mocks

import (
	"context"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
)

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	Published []models.PostView
	All       []models.PostView
	Admin     map[string]*models.AdminPostView
	FeedXML   []byte

	CreateFunc func(ctx context.Context, req *models.CreatePostRequest) (string, error)
	UpdateFunc func(ctx context.Context, id string, req *models.UpdatePostRequest) error
	DeleteFunc func(ctx context.Context, id string) error
	Err        error

	Created []*models.CreatePostRequest
	Updated map[string]*models.UpdatePostRequest
	Deleted []string
}

// Verify interface compliance
var _ service.PostService = (*MockPostService)(nil)

func NewMockPostService() *MockPostService {
	return &MockPostService{
		Admin:   make(map[string]*models.AdminPostView),
		Updated: make(map[string]*models.UpdatePostRequest),
	}
}

func (m *MockPostService) ListPublished(ctx context.Context) ([]models.PostView, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Published, nil
}

func (m *MockPostService) ListAll(ctx context.Context) ([]models.PostView, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.All, nil
}

func (m *MockPostService) GetPublished(ctx context.Context, id string) (*models.PostView, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Published {
		if m.Published[i].ID == id {
			return &m.Published[i], nil
		}
	}
	return nil, apperr.NotFound("post not found")
}

func (m *MockPostService) GetForAdmin(ctx context.Context, id string) (*models.AdminPostView, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Admin[id]; ok {
		return v, nil
	}
	return nil, apperr.NotFound("post not found")
}

func (m *MockPostService) Create(ctx context.Context, req *models.CreatePostRequest) (string, error) {
	m.Created = append(m.Created, req)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return "123456789", nil
}

func (m *MockPostService) Update(ctx context.Context, id string, req *models.UpdatePostRequest) error {
	m.Updated[id] = req
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil
}

func (m *MockPostService) Delete(ctx context.Context, id string) error {
	m.Deleted = append(m.Deleted, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPostService) Feed(ctx context.Context) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.FeedXML, nil
}
