package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-content-api/internal/api"
	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/auth"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/metrics"
	"github.com/blog-content-api/internal/mocks"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
)

const testSecret = "test-admin-secret"

func setupTestRouter(token string) (*gin.Engine, *mocks.MockPostService) {
	gin.SetMode(gin.TestMode)

	mockPosts := mocks.NewMockPostService()
	services := &service.Services{Posts: mockPosts}
	guard := auth.NewGuard(config.AuthConfig{AdminToken: token})

	router := api.NewRouter(services, guard, metrics.NewRecorder(nil), zerolog.Nop())
	return router, mockPosts
}

func doRequest(router http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(testSecret)

	w := doRequest(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "blog-content-api", body["service"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(testSecret)
	doRequest(router, http.MethodGet, "/health", "", nil)

	w := doRequest(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `blog_http_requests_total{code="200",method="GET",route="/health"} 1`)
}

func TestListPosts(t *testing.T) {
	router, mockPosts := setupTestRouter(testSecret)
	mockPosts.Published = []models.PostView{
		{Post: models.Post{ID: "100000001", Title: "Hello", Tags: []string{}}, ReadingMinutes: 1},
	}

	w := doRequest(router, http.MethodGet, "/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "100000001", posts[0]["id"])
	assert.Equal(t, "Hello", posts[0]["title"])
	assert.NotContains(t, posts[0], "status")
	assert.NotContains(t, posts[0], "body")
}

func TestGetPost_PublicAndAdminPreview(t *testing.T) {
	router, mockPosts := setupTestRouter(testSecret)
	mockPosts.Admin["100000002"] = &models.AdminPostView{
		PostView: models.PostView{Post: models.Post{ID: "100000002", Title: "Draft", Draft: true}, Status: models.StatusDraft},
		Raw:      "---\ntitle: \"Draft\"\n---\nwip",
		Body:     "wip",
	}

	w := doRequest(router, http.MethodGet, "/posts/100000002", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/posts/100000002", "", map[string]string{auth.TokenHeader: testSecret})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "draft", body["status"])
	assert.Equal(t, "wip", body["body"])
	assert.Contains(t, body["raw"], "title:")

	// a wrong header falls back to the public view
	w = doRequest(router, http.MethodGet, "/posts/100000002", "", map[string]string{auth.TokenHeader: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePost_RequiresAdmin(t *testing.T) {
	router, mockPosts := setupTestRouter(testSecret)
	body := `{"title":"Hello","content":"World"}`

	w := doRequest(router, http.MethodPost, "/posts", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, mockPosts.Created)

	w = doRequest(router, http.MethodPost, "/posts", body, map[string]string{auth.TokenHeader: testSecret})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "123456789", decodeBody(t, w)["id"])
	require.Len(t, mockPosts.Created, 1)
	assert.Equal(t, "World", mockPosts.Created[0].Content)
}

func TestCreatePost_BodyErrors(t *testing.T) {
	router, mockPosts := setupTestRouter(testSecret)
	header := map[string]string{auth.TokenHeader: testSecret}

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown field", body: `{"title":"a","content":"b","slug":"x"}`, want: "invalid request body"},
		{name: "malformed", body: `{"title":`, want: "invalid request body"},
		{name: "wrong type", body: `{"title":1}`, want: "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/posts", tt.body, header)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decodeBody(t, w)["error"])
		})
	}

	w := doRequest(router, http.MethodPost, "/posts", "", header)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request body is required", decodeBody(t, w)["error"])
	assert.Empty(t, mockPosts.Created)
}

func TestNewRouter_LeavesGinBindingDefaults(t *testing.T) {
	setupTestRouter(testSecret)
	assert.False(t, binding.EnableDecoderDisallowUnknownFields)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	router, mockPosts := setupTestRouter(testSecret)
	header := map[string]string{auth.TokenHeader: testSecret}

	mockPosts.CreateFunc = func(_ context.Context, _ *models.CreatePostRequest) (string, error) {
		return "", apperr.Conflict("could not allocate a unique post id")
	}
	w := doRequest(router, http.MethodPost, "/posts", `{"title":"a","content":"b"}`, header)
	assert.Equal(t, http.StatusConflict, w.Code)

	mockPosts.UpdateFunc = func(_ context.Context, _ string, _ *models.UpdatePostRequest) error {
		return apperr.NotFound("post not found")
	}
	w = doRequest(router, http.MethodPut, "/posts/1", `{"title":"x"}`, header)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockPosts.DeleteFunc = func(_ context.Context, _ string) error {
		return apperr.Internal("delete post", errors.New("unlink /srv/content/posts/1.md: permission denied"))
	}
	w = doRequest(router, http.MethodDelete, "/posts/1", "", header)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperr.GenericMessage, decodeBody(t, w)["error"])
	assert.NotContains(t, w.Body.String(), "/srv")
}

func TestLogin(t *testing.T) {
	router, _ := setupTestRouter(testSecret)

	w := doRequest(router, http.MethodPost, "/admin/login", `{"token":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/admin/login", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/admin/login", `{"token":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = doRequest(router, http.MethodPost, "/admin/login", `{"token":"`+testSecret+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])

	names := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		names[c.Name] = true
	}
	assert.True(t, names[auth.SessionCookie])
	assert.True(t, names[auth.CSRFCookie])
}

func TestLogin_Misconfigured(t *testing.T) {
	router, _ := setupTestRouter("")

	w := doRequest(router, http.MethodPost, "/admin/login", `{"token":"anything"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "misconfigured")

	w = doRequest(router, http.MethodGet, "/admin/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["loggedIn"])

	w = doRequest(router, http.MethodPost, "/posts", `{"title":"a","content":"b"}`, map[string]string{auth.TokenHeader: ""})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogout_ExpiresCookies(t *testing.T) {
	router, _ := setupTestRouter(testSecret)

	w := doRequest(router, http.MethodPost, "/admin/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestAdminListPosts_RequiresSession(t *testing.T) {
	router, mockPosts := setupTestRouter(testSecret)
	mockPosts.All = []models.PostView{
		{Post: models.Post{ID: "1", Title: "A"}, Status: models.StatusScheduled},
	}

	w := doRequest(router, http.MethodGet, "/admin/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: testSecret})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"scheduled"`)
}

func TestFeedEndpoint(t *testing.T) {
	router, mockPosts := setupTestRouter(testSecret)
	mockPosts.FeedXML = []byte(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"></rss>`)

	w := doRequest(router, http.MethodGet, "/feed.xml", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "s-maxage=1800, stale-while-revalidate=86400", w.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "<?xml"))
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := setupTestRouter(testSecret)

	w := doRequest(router, http.MethodPatch, "/posts/1", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "DELETE, GET, PUT", w.Header().Get("Allow"))

	w = doRequest(router, http.MethodGet, "/admin/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST", w.Header().Get("Allow"))

	w = doRequest(router, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
