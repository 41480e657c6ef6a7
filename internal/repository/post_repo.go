package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/apperr"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/frontmatter"
	"github.com/blog-content-api/internal/models"
)

const (
	postExt = ".md"

	idMin  = 100_000_000
	idSpan = 900_000_000
)

// FileStore implements PostRepository over a directory of Markdown files
type FileStore struct {
	dir         string
	maxAttempts int
	maxTags     int
	now         func() time.Time
	newID       func() string
	onCreate    func(attempts int)
	log         zerolog.Logger
}

// Option customizes a FileStore
type Option func(*FileStore)

// WithClock overrides the time source used for the date field
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) { s.now = now }
}

// WithIDGenerator overrides random id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *FileStore) { s.newID = gen }
}

// WithCreateObserver is called with the number of ids tried for each
// successful create
func WithCreateObserver(fn func(attempts int)) Option {
	return func(s *FileStore) { s.onCreate = fn }
}

// NewFileStore creates a store rooted at cfg.Dir
func NewFileStore(cfg config.ContentConfig, log zerolog.Logger, opts ...Option) *FileStore {
	s := &FileStore{
		dir:         cfg.Dir,
		maxAttempts: cfg.IDMaxAttempts,
		maxTags:     cfg.MaxTags,
		now:         time.Now,
		newID:       RandomID,
		log:         log.With().Str("component", "file_store").Logger(),
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 50
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RandomID returns a uniformly sampled 9-digit numeric id
func RandomID() string {
	return strconv.Itoa(idMin + rand.IntN(idSpan))
}

// Dir returns the content directory
func (s *FileStore) Dir() string {
	return s.dir
}

// ListIDs returns the stems of all .md files, sorted
func (s *FileStore) ListIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, apperr.Internal("list posts", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, postExt) {
			continue
		}
		if id := strings.TrimSuffix(name, postExt); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// GetByID loads and parses a post. The id from the file name always wins
// over an id stored in the metadata.
func (s *FileStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	raw, err := s.ReadRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	post, err := frontmatter.Decode(raw, id)
	if err != nil {
		return nil, apperr.Internal("decode post", fmt.Errorf("post %s: %w", id, err))
	}
	post.ID = id
	return post, nil
}

// ReadRaw returns the unmodified file contents of a post
func (s *FileStore) ReadRaw(ctx context.Context, id string) (string, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperr.NotFound("post not found")
		}
		return "", apperr.Internal("read post", err)
	}
	return string(data), nil
}

// List loads every post, skipping files that fail to load, newest first
func (s *FileStore) List(ctx context.Context) ([]*models.Post, error) {
	ids, err := s.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		post, err := s.GetByID(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("post_id", id).Msg("Skipping unreadable post")
			continue
		}
		posts = append(posts, post)
	}

	SortNewestFirst(posts)
	return posts, nil
}

// Create writes a new post under a freshly allocated id.
// Files are opened exclusively, so an id already on disk counts as a
// collision and consumes one attempt instead of being overwritten.
func (s *FileStore) Create(ctx context.Context, req *models.CreatePostRequest) (string, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return "", apperr.Validation("title and content are required")
	}

	post := &models.Post{
		Title:     req.Title,
		Excerpt:   req.Excerpt,
		Date:      strings.TrimSpace(req.Date),
		PublishAt: strings.TrimSpace(req.PublishAt),
		Cover:     req.Cover,
		Tags:      models.NormalizeTags(req.Tags, s.maxTags),
		Author:    models.Author{Name: req.AuthorName, AvatarSrc: req.AuthorAvatar},
	}
	if post.Date == "" {
		post.Date = models.FormatDate(s.now())
	}
	if req.Draft != nil {
		post.Draft = *req.Draft
		post.DraftSet = true
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	body := frontmatter.StripBlock(req.Content)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperr.Internal("create content directory", err)
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		id := s.newID()
		path, err := s.pathFor(id)
		if err != nil {
			return "", apperr.Internal("allocate post id", err)
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				s.log.Debug().Str("post_id", id).Int("attempt", attempt+1).Msg("Post id collision")
				continue
			}
			return "", apperr.Internal("create post", err)
		}

		post.ID = id
		contents, err := encodePost(post, body)
		if err == nil {
			_, err = f.WriteString(contents)
		}
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
			return "", apperr.Internal("write post", err)
		}

		s.log.Info().Str("post_id", id).Int("attempts", attempt+1).Msg("Post created")
		if s.onCreate != nil {
			s.onCreate(attempt + 1)
		}
		return id, nil
	}

	return "", apperr.Conflict("could not allocate a unique post id")
}

// Update merges req over the stored post and rewrites the whole file.
// The date field is refreshed unless the caller supplies one.
func (s *FileStore) Update(ctx context.Context, id string, req *models.UpdatePostRequest) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	next := *existing
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return apperr.Validation("title must not be empty")
		}
		next.Title = *req.Title
	}
	if req.Excerpt != nil {
		next.Excerpt = *req.Excerpt
	}
	if req.Draft != nil {
		next.Draft = *req.Draft
		next.DraftSet = true
	}
	if req.PublishAt != nil {
		next.PublishAt = strings.TrimSpace(*req.PublishAt)
	}
	if req.Cover != nil {
		next.Cover = *req.Cover
	}
	if req.Tags != nil {
		next.Tags = models.NormalizeTags(req.Tags, s.maxTags)
	}
	if req.AuthorName != nil {
		next.Author.Name = *req.AuthorName
	}
	if req.AuthorAvatar != nil {
		next.Author.AvatarSrc = *req.AuthorAvatar
	}

	next.Date = models.FormatDate(s.now())
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		next.Date = strings.TrimSpace(*req.Date)
	}

	body := existing.Body
	if req.Content != nil {
		body = frontmatter.StripBlock(*req.Content)
	}

	contents, err := encodePost(&next, body)
	if err != nil {
		return apperr.Internal("encode post", err)
	}
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}
	if err := writeFileReplace(path, contents); err != nil {
		return apperr.Internal("write post", err)
	}

	s.log.Info().Str("post_id", id).Msg("Post updated")
	return nil
}

// Delete removes the backing file of a post
func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("post not found")
		}
		return apperr.Internal("delete post", err)
	}
	s.log.Info().Str("post_id", id).Msg("Post deleted")
	return nil
}

// RepairFrontMatter rewrites a post file whose metadata block needs
// normalizing. It reports whether the file needed a change; with dryRun the
// file is left untouched.
func (s *FileStore) RepairFrontMatter(ctx context.Context, id string, dryRun bool) (bool, error) {
	raw, err := s.ReadRaw(ctx, id)
	if err != nil {
		return false, err
	}
	normalized := frontmatter.Normalize(raw)
	if normalized == raw {
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	path, err := s.pathFor(id)
	if err != nil {
		return false, err
	}
	if err := writeFileReplace(path, normalized); err != nil {
		return false, apperr.Internal("write post", err)
	}
	return true, nil
}

// pathFor resolves id to its file and rejects anything that would land
// outside the content directory.
func (s *FileStore) pathFor(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "/\\\x00") || id == "." || id == ".." {
		return "", apperr.NotFound("post not found")
	}
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", apperr.Internal("resolve content directory", err)
	}
	full := filepath.Join(root, id+postExt)
	if filepath.Dir(full) != root {
		return "", apperr.NotFound("post not found")
	}
	return full, nil
}

func encodePost(p *models.Post, body string) (string, error) {
	front, err := frontmatter.Encode(p)
	if err != nil {
		return "", err
	}
	return front + body, nil
}

// writeFileReplace writes contents to a sibling temp file and renames it over
// path, so readers never observe a half-written post.
func writeFileReplace(path, contents string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(contents); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// SortNewestFirst orders posts by effective date, newest first. Posts whose
// date does not parse go last; ties fall back to reverse id order.
func SortNewestFirst(posts []*models.Post) {
	type keyed struct {
		post *models.Post
		at   time.Time
		ok   bool
	}
	keys := make([]keyed, len(posts))
	for i, p := range posts {
		at, ok := models.ParseDate(p.EffectiveDate())
		keys[i] = keyed{post: p, at: at, ok: ok}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		switch {
		case a.ok && b.ok:
			if !a.at.Equal(b.at) {
				return a.at.After(b.at)
			}
			return a.post.ID > b.post.ID
		case a.ok:
			return true
		case b.ok:
			return false
		default:
			return a.post.ID > b.post.ID
		}
	})

	for i := range keys {
		posts[i] = keys[i].post
	}
}
