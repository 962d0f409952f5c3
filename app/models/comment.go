package models

import (
	"time"
)

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}

// GetPost returns the owning post, or nil when the comment is detached.
func (c *Comment) GetPost() *Post {
	return c.Post
}

// SetPost sets the parent post and updates the PostID. A nil post clears both.
func (c *Comment) SetPost(post *Post) *Comment {
	c.Post = post
	if post == nil {
		c.PostID = 0
		return c
	}
	c.PostID = post.ID
	return c
}
