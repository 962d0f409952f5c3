package models

import "time"

// PostView is the externally exposed shape of a post (the "post:show" group).
// Comments are never part of it and tags omit their reverse collection.
type PostView struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body"`
	Status      Status    `json:"status"`
	StatusName  string    `json:"statusName"`
	Category    *Category `json:"category"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Tags        []*Tag    `json:"tags"`
	Author      *Author   `json:"author"`
}

// Show renders the post:show view.
func (p *Post) Show() PostView {
	tags := p.Tags
	if tags == nil {
		tags = []*Tag{}
	}
	return PostView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Body:        p.Body,
		Status:      p.Status,
		StatusName:  p.Status.String(),
		Category:    p.Category,
		Slug:        p.Slug,
		CreatedAt:   p.CreatedAt,
		ModifiedAt:  p.ModifiedAt,
		Tags:        tags,
		Author:      p.Author,
	}
}

// ShowAll renders a list of posts.
func ShowAll(posts []*Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, p.Show())
	}
	return views
}
