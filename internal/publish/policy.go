// Package publish decides public visibility of posts.
package publish

import (
	"strings"
	"time"

	"github.com/blog-content-api/internal/models"
)

// IsPublished reports whether p is publicly visible at now.
// Drafts are never visible. A publishAt that does not parse keeps the post
// hidden rather than exposing it early.
func IsPublished(p *models.Post, now time.Time) bool {
	if p.Draft {
		return false
	}
	if strings.TrimSpace(p.PublishAt) == "" {
		return true
	}
	when, ok := models.ParseDate(p.PublishAt)
	if !ok {
		return false
	}
	return !when.After(now)
}

// Status classifies p for admin listings
func Status(p *models.Post, now time.Time) models.PostStatus {
	switch {
	case p.Draft:
		return models.StatusDraft
	case IsPublished(p, now):
		return models.StatusPublished
	default:
		return models.StatusScheduled
	}
}

// FilterPublished keeps the visible posts, preserving order
func FilterPublished(posts []*models.Post, now time.Time) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if IsPublished(p, now) {
			out = append(out, p)
		}
	}
	return out
}
