package models

import "time"

// Post represents a blog post together with its category, author, tags and comments.
type Post struct {
	ID          int        `json:"id" validate:"gte=0"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"required"`
	Body        string     `json:"body" validate:"required"`
	Status      Status     `json:"status" validate:"post_status"`
	Slug        string     `json:"slug" validate:"max=255"`
	CreatedAt   time.Time  `json:"createdAt"`
	ModifiedAt  time.Time  `json:"modifiedAt"`
	Category    *Category  `json:"category" validate:"required"`
	Author      *Author    `json:"author,omitempty" validate:"omitempty"`
	Tags        []*Tag     `json:"tags" validate:"dive,required"`
	Comments    []*Comment `json:"-" validate:"-"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id" validate:"gte=0"`
	PostID    int       `json:"postId" validate:"gte=0"`
	Author    string    `json:"author" validate:"required,min=2,max=100"`
	Content   string    `json:"content" validate:"required,min=1,max=1000"`
	CreatedAt time.Time `json:"createdAt"`
	Post      *Post     `json:"-" validate:"-"`
}

// Tag labels posts. Posts is the reverse side of Post.Tags.
type Tag struct {
	ID    int     `json:"id" validate:"gte=0"`
	Name  string  `json:"name" validate:"required,max=64"`
	Slug  string  `json:"slug"`
	Posts []*Post `json:"-" validate:"-"`
}

// Category groups posts; every post belongs to exactly one.
type Category struct {
	ID   int    `json:"id" validate:"gte=0"`
	Name string `json:"name" validate:"required,max=128"`
	Slug string `json:"slug"`
}

// Author writes posts.
type Author struct {
	ID    int    `json:"id" validate:"gte=0"`
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}
