package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/models"
)

var fixedNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "posts")
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	store := NewFileStore(config.ContentConfig{Dir: dir, IDMaxAttempts: 50, MaxTags: 20}, zerolog.Nop(), opts...)
	return store, dir
}

func writePost(t *testing.T, dir, id, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".md"), []byte(contents), 0o644))
}

func ptr[T any](v T) *T { return &v }

func TestRandomID_NineDigits(t *testing.T) {
	re := regexp.MustCompile(`^[1-9][0-9]{8}$`)
	for i := 0; i < 1000; i++ {
		assert.Regexp(t, re, RandomID())
	}
}

func TestCreate_ThenGet(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &models.CreatePostRequest{
		Title:      "Hello",
		Content:    "World",
		Tags:       []string{"ops", "ops", " go "},
		AuthorName: "Jane",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9]{9}$`, id)
	assert.FileExists(t, filepath.Join(dir, id+".md"))

	post, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.Body)
	assert.Equal(t, "Oct 15, 2026", post.Date)
	assert.False(t, post.Draft)
	assert.Equal(t, []string{"ops", "go"}, post.Tags)
	assert.Equal(t, "Jane", post.Author.Name)
	assert.Equal(t, "", post.Excerpt)
}

func TestCreate_ValidationError(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	for _, req := range []*models.CreatePostRequest{
		{Title: "", Content: "body"},
		{Title: "title", Content: ""},
		{Title: "   ", Content: "   "},
	} {
		_, err := store.Create(ctx, req)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
	}

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreate_ConflictWhenRetriesExhausted(t *testing.T) {
	store, dir := newTestStore(t, WithIDGenerator(func() string { return "123456789" }))
	ctx := context.Background()

	original := "---\ntitle: \"Existing\"\n---\nkeep me"
	writePost(t, dir, "123456789", original)

	_, err := store.Create(ctx, &models.CreatePostRequest{Title: "New", Content: "body"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	data, err := os.ReadFile(filepath.Join(dir, "123456789.md"))
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestCreate_RetriesPastCollisions(t *testing.T) {
	ids := []string{"111111111", "111111111", "222222222"}
	calls, observed := 0, 0
	store, dir := newTestStore(t, WithIDGenerator(func() string {
		id := ids[calls]
		calls++
		return id
	}), WithCreateObserver(func(n int) { observed = n }))
	writePost(t, dir, "111111111", "---\ntitle: \"Taken\"\n---\n")

	id, err := store.Create(context.Background(), &models.CreatePostRequest{Title: "New", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "222222222", id)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, observed)
}

func TestCreate_RapidCallsProduceUniqueIDs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := store.Create(ctx, &models.CreatePostRequest{Title: fmt.Sprintf("Post %d", i), Content: "x"})
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 200)
}

func TestCreate_StripsEmbeddedFrontMatter(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &models.CreatePostRequest{
		Title:   "Hello",
		Content: "---\ntitle: \"Sneaky\"\n---\n\nReal body",
	})
	require.NoError(t, err)

	post, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "Real body", post.Body)
}

func TestUpdate_MergesAndRefreshesDate(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	writePost(t, dir, "100000001", "---\n"+
		"id: \"100000001\"\n"+
		"title: \"Old\"\n"+
		"excerpt: \"Summary\"\n"+
		"date: \"Jan 1, 2024\"\n"+
		"publishAt: \"2024-01-01T00:00:00Z\"\n"+
		"tags: [\"a\", \"b\"]\n"+
		"author:\n  name: \"Ann\"\n"+
		"---\nOriginal body\n")

	err := store.Update(ctx, "100000001", &models.UpdatePostRequest{
		Title: ptr("New"),
		Draft: ptr(true),
	})
	require.NoError(t, err)

	post, err := store.GetByID(ctx, "100000001")
	require.NoError(t, err)
	assert.Equal(t, "New", post.Title)
	assert.Equal(t, "Summary", post.Excerpt)
	assert.True(t, post.Draft)
	assert.Equal(t, "Oct 15, 2026", post.Date)
	assert.Equal(t, "2024-01-01T00:00:00Z", post.PublishAt)
	assert.Equal(t, []string{"a", "b"}, post.Tags)
	assert.Equal(t, "Ann", post.Author.Name)
	assert.Equal(t, "Original body\n", post.Body)
}

func TestUpdate_ContentAndClearing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &models.CreatePostRequest{
		Title:     "Hello",
		Content:   "First",
		PublishAt: "2099-01-01T00:00:00Z",
		Tags:      []string{"x"},
	})
	require.NoError(t, err)

	err = store.Update(ctx, id, &models.UpdatePostRequest{
		Content:   ptr("---\ntitle: \"ignored\"\n---\nSecond"),
		PublishAt: ptr(""),
		Tags:      []string{},
		Date:      ptr("Feb 2, 2025"),
	})
	require.NoError(t, err)

	post, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "Second", post.Body)
	assert.Equal(t, "", post.PublishAt)
	assert.Empty(t, post.Tags)
	assert.Equal(t, "Feb 2, 2025", post.Date)
}

func TestUpdate_Errors(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, "999999999", &models.UpdatePostRequest{Title: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	id, err := store.Create(ctx, &models.CreatePostRequest{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	err = store.Update(ctx, id, &models.UpdatePostRequest{Title: ptr("  ")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDelete(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &models.CreatePostRequest{Title: "Hello", Content: "World"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	assert.NoFileExists(t, filepath.Join(dir, id+".md"))

	err = store.Delete(ctx, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = store.GetByID(ctx, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPathTraversalIsRejected(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	// a readable file one level above the content directory
	outside := filepath.Join(filepath.Dir(dir), "secret.md")
	require.NoError(t, os.WriteFile(outside, []byte("---\ntitle: \"secret\"\n---\nsecret"), 0o644))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for _, id := range []string{"../secret", "../../etc/passwd", "..", ".", "", "a/b", `..\secret`, "x\x00y", "/etc/passwd"} {
		_, err := store.GetByID(ctx, id)
		assert.True(t, apperr.Is(err, apperr.KindNotFound), "id %q: %v", id, err)

		err = store.Delete(ctx, id)
		assert.True(t, apperr.Is(err, apperr.KindNotFound), "id %q: %v", id, err)
	}
	assert.FileExists(t, outside)
}

func TestListIDs(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	ids, err := store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "missing directory lists nothing")

	writePost(t, dir, "2", "x")
	writePost(t, dir, "1", "x")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0o755))

	ids, err = store.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestList_OrderAndSkipsBrokenFiles(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	writePost(t, dir, "a", "---\ntitle: \"A\"\ndate: \"2024-01-01\"\n---\n")
	writePost(t, dir, "b", "---\ntitle: \"B\"\ndate: \"Jan 1, 2020\"\npublishAt: \"2024-06-01T00:00:00Z\"\n---\n")
	writePost(t, dir, "c", "---\ntitle: \"C\"\ndate: \"2023-01-01\"\n---\n")
	writePost(t, dir, "x", "---\ntitle: \"X\"\ndate: \"someday\"\n---\n")
	writePost(t, dir, "y", "---\ntitle: \"Y\"\ndate: \"\"\n---\n")
	writePost(t, dir, "broken", "---\ntitle: [unclosed\n---\n")

	posts, err := store.List(ctx)
	require.NoError(t, err)

	got := make([]string, 0, len(posts))
	for _, p := range posts {
		got = append(got, p.ID)
	}
	assert.Equal(t, []string{"b", "a", "c", "y", "x"}, got)
}

func TestRepairFrontMatter(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	writePost(t, dir, "glued", "---\ntitle: \"G\"\n---Body")
	writePost(t, dir, "clean", "---\ntitle: \"C\"\n---\nBody")

	changed, err := store.RepairFrontMatter(ctx, "glued", true)
	require.NoError(t, err)
	assert.True(t, changed)
	data, _ := os.ReadFile(filepath.Join(dir, "glued.md"))
	assert.Equal(t, "---\ntitle: \"G\"\n---Body", string(data), "dry run must not write")

	changed, err = store.RepairFrontMatter(ctx, "glued", false)
	require.NoError(t, err)
	assert.True(t, changed)
	data, _ = os.ReadFile(filepath.Join(dir, "glued.md"))
	assert.Equal(t, "---\ntitle: \"G\"\n---\nBody", string(data))

	changed, err = store.RepairFrontMatter(ctx, "clean", false)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMalformedDraftNeverReadsAsPublished(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()
	writePost(t, dir, "glued", "---\ntitle: \"Secret\"\ndraft: true\n---- first bullet\n- second bullet\n")
	writePost(t, dir, "unclosed", "---\ntitle: \"Hidden\"\ndraft: true\n- first bullet\n")

	post, err := store.GetByID(ctx, "glued")
	require.NoError(t, err)
	assert.True(t, post.Draft)
	assert.Equal(t, "Secret", post.Title)

	_, err = store.GetByID(ctx, "unclosed")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	posts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "glued", posts[0].ID)
	assert.True(t, posts[0].Draft)
}

func TestDraftKeyWrittenOnlyWhenSet(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &models.CreatePostRequest{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, id+".md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "draft")

	require.NoError(t, store.Update(ctx, id, &models.UpdatePostRequest{Draft: ptr(false)}))
	data, err = os.ReadFile(filepath.Join(dir, id+".md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "draft: false\n")

	require.NoError(t, store.Update(ctx, id, &models.UpdatePostRequest{Title: ptr("Renamed")}))
	data, err = os.ReadFile(filepath.Join(dir, id+".md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "draft: false\n")
}
