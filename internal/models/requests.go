package models

// CreatePostRequest is the body of a create call
type CreatePostRequest struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Excerpt      string   `json:"excerpt,omitempty"`
	Date         string   `json:"date,omitempty"`
	Draft        *bool    `json:"draft,omitempty"`
	PublishAt    string   `json:"publishAt,omitempty"`
	Cover        string   `json:"cover,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	AuthorName   string   `json:"authorName,omitempty"`
	AuthorAvatar string   `json:"authorAvatar,omitempty"`
}

// UpdatePostRequest is the body of an update call.
// Nil fields keep the stored value; an empty PublishAt clears the schedule.
type UpdatePostRequest struct {
	Title        *string  `json:"title,omitempty"`
	Content      *string  `json:"content,omitempty"`
	Excerpt      *string  `json:"excerpt,omitempty"`
	Date         *string  `json:"date,omitempty"`
	Draft        *bool    `json:"draft,omitempty"`
	PublishAt    *string  `json:"publishAt,omitempty"`
	Cover        *string  `json:"cover,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	AuthorName   *string  `json:"authorName,omitempty"`
	AuthorAvatar *string  `json:"authorAvatar,omitempty"`
}

// LoginRequest carries the candidate admin secret
type LoginRequest struct {
	Token string `json:"token"`
}

// CreatePostResponse is returned after a successful create
type CreatePostResponse struct {
	ID string `json:"id"`
}
