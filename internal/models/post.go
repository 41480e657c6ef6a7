package models

import "strings"

// Author identifies the writer of a post
type Author struct {
	Name      string `json:"name"`
	AvatarSrc string `json:"avatarSrc,omitempty"`
}

// Post is a blog document backed by <id>.md in the content directory.
// Body holds the raw Markdown; ContentHTML is derived on every read and never persisted.
type Post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Date        string   `json:"date"`
	Draft       bool     `json:"draft"`
	PublishAt   string   `json:"publishAt,omitempty"`
	ImageSrc    string   `json:"imageSrc"`
	Cover       string   `json:"cover"`
	Tags        []string `json:"tags"`
	Author      Author   `json:"author"`
	ContentHTML string   `json:"contentHtml"`
	Body        string   `json:"-"`

	// DraftSet records that the stored metadata carries a draft key, so a
	// false value is written back instead of being omitted.
	DraftSet bool `json:"-"`
}

// EffectiveDate is the date used for ordering and feeds: publishAt when set, else date
func (p *Post) EffectiveDate() string {
	if strings.TrimSpace(p.PublishAt) != "" {
		return p.PublishAt
	}
	return p.Date
}

// PostStatus is the visibility state of a post at a point in time
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
)

// PostView is a post as returned by the API
type PostView struct {
	Post
	Status         PostStatus `json:"status,omitempty"`
	ReadingMinutes int        `json:"readingMinutes"`
}

// AdminPostView adds the editor fields exposed to authenticated callers
type AdminPostView struct {
	PostView
	Raw  string `json:"raw"`
	Body string `json:"body"`
}

// NormalizeTags trims tags, drops empties and duplicates (first occurrence wins)
// and caps the result at max entries. A nil input stays nil.
func NormalizeTags(tags []string, max int) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
