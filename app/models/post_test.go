package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPost() *Post {
	p := NewPost().
		SetTitle("Valid Title").
		SetDescription("A short description").
		SetBody("This is valid content that meets the minimum length requirement").
		SetStatus(StatusDraft).
		SetCategory(&Category{ID: 1, Name: "General", Slug: "general"})
	p.BeforeCreate()
	return p
}

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Post)
		wantErr bool
	}{
		{
			name:    "valid post",
			mutate:  func(p *Post) {},
			wantErr: false,
		},
		{
			name:    "missing title",
			mutate:  func(p *Post) { p.Title = "" },
			wantErr: true,
		},
		{
			name:    "missing body",
			mutate:  func(p *Post) { p.Body = "" },
			wantErr: true,
		},
		{
			name:    "missing category",
			mutate:  func(p *Post) { p.Category = nil },
			wantErr: true,
		},
		{
			name:    "status zero",
			mutate:  func(p *Post) { p.Status = 0 },
			wantErr: true,
		},
		{
			name:    "status out of range",
			mutate:  func(p *Post) { p.Status = 6 },
			wantErr: true,
		},
		{
			name:    "zero creation time",
			mutate:  func(p *Post) { p.CreatedAt = time.Time{} },
			wantErr: true,
		},
		{
			name: "duplicate tag by id",
			mutate: func(p *Post) {
				p.Tags = []*Tag{{ID: 4, Name: "go"}, {ID: 4, Name: "go"}}
			},
			wantErr: true,
		},
		{
			name:    "author without name",
			mutate:  func(p *Post) { p.Author = &Author{ID: 1} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPost()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPostHasEmptyCollections(t *testing.T) {
	p := NewPost()
	assert.NotNil(t, p.GetTags())
	assert.NotNil(t, p.GetComments())
	assert.Empty(t, p.GetTags())
	assert.Empty(t, p.GetComments())
	assert.Zero(t, p.GetID())
	assert.Nil(t, p.GetAuthor())
}

func TestPostSetters(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	category := &Category{ID: 2, Name: "News"}
	author := &Author{ID: 3, Name: "Jane"}

	p := NewPost().
		SetTitle("Hello World").
		SetDescription("desc").
		SetBody("body").
		SetStatus(StatusReview).
		SetCategory(category).
		SetAuthor(author).
		SetCreatedAt(created).
		SetModifiedAt(created)

	assert.Equal(t, "Hello World", p.GetTitle())
	assert.Equal(t, "Hello World", p.String())
	assert.Equal(t, "hello-world", p.GetSlug())
	assert.Equal(t, "desc", p.GetDescription())
	assert.Equal(t, "body", p.GetBody())
	assert.Equal(t, StatusReview, p.GetStatus())
	assert.Same(t, category, p.GetCategory())
	assert.Same(t, author, p.GetAuthor())
	assert.Equal(t, created, p.GetCreatedAt())
	assert.Equal(t, created, p.GetModifiedAt())

	p.SetAuthor(nil)
	assert.Nil(t, p.GetAuthor())

	p.SetSlug("custom")
	p.SetTitle("Hello World")
	assert.Equal(t, "custom", p.GetSlug(), "unchanged title keeps slug")

	p.SetTitle("Another Title")
	assert.Equal(t, "another-title", p.GetSlug())
}

func TestPostTimestamps(t *testing.T) {
	p := NewPost().SetTitle("Stamped")
	assert.True(t, p.CreatedAt.IsZero())

	p.BeforeCreate()
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.ModifiedAt)
	assert.Equal(t, "stamped", p.Slug)

	created := p.CreatedAt
	time.Sleep(time.Millisecond)
	p.BeforeUpdate()
	assert.Equal(t, created, p.CreatedAt)
	assert.True(t, p.ModifiedAt.After(created))
}

func TestPostTagManagement(t *testing.T) {
	t.Run("add tag registers both sides", func(t *testing.T) {
		p := NewPost()
		tag := NewTag("golang")

		p.AddTag(tag)
		require.Len(t, p.Tags, 1)
		require.Len(t, tag.Posts, 1)
		assert.Same(t, tag, p.Tags[0])
		assert.Same(t, p, tag.Posts[0])
	})

	t.Run("add tag twice is idempotent", func(t *testing.T) {
		p := NewPost()
		tag := NewTag("golang")

		p.AddTag(tag).AddTag(tag)
		assert.Len(t, p.Tags, 1)
		assert.Len(t, tag.Posts, 1)
	})

	t.Run("same persisted id counts as present", func(t *testing.T) {
		p := NewPost()
		p.AddTag(&Tag{ID: 9, Name: "a"})
		p.AddTag(&Tag{ID: 9, Name: "a"})
		assert.Len(t, p.Tags, 1)
	})

	t.Run("add from tag side", func(t *testing.T) {
		p := NewPost()
		tag := NewTag("golang")

		tag.AddPost(p)
		assert.True(t, p.HasTag(tag))
		assert.True(t, tag.HasPost(p))
		assert.Len(t, p.Tags, 1)
		assert.Len(t, tag.Posts, 1)
	})

	t.Run("remove tag detaches both sides", func(t *testing.T) {
		p := NewPost()
		keep := NewTag("keep")
		drop := NewTag("drop")
		p.AddTag(keep).AddTag(drop)

		p.RemoveTag(drop)
		assert.Equal(t, []*Tag{keep}, p.Tags)
		assert.Empty(t, drop.Posts)
		assert.Len(t, keep.Posts, 1)
	})

	t.Run("remove by persisted id detaches the stored tag", func(t *testing.T) {
		p := &Post{ID: 1}
		stored := &Tag{ID: 5, Name: "go"}
		p.AddTag(stored)

		p.RemoveTag(&Tag{ID: 5})
		assert.Empty(t, p.Tags)
		assert.Empty(t, stored.Posts)
	})

	t.Run("remove from tag side by persisted id", func(t *testing.T) {
		p := &Post{ID: 1}
		tag := &Tag{ID: 5, Name: "go"}
		p.AddTag(tag)

		tag.RemovePost(&Post{ID: 1})
		assert.Empty(t, tag.Posts)
		assert.Empty(t, p.Tags)
	})

	t.Run("remove absent tag is a no-op", func(t *testing.T) {
		p := NewPost()
		attached := NewTag("attached")
		stranger := NewTag("stranger")
		other := NewPost()
		stranger.AddPost(other)
		p.AddTag(attached)

		p.RemoveTag(stranger)
		assert.Len(t, p.Tags, 1)
		assert.Len(t, stranger.Posts, 1)
		assert.Same(t, other, stranger.Posts[0])

		p.RemoveTag(nil)
		assert.Len(t, p.Tags, 1)
	})

	t.Run("tag ids skip unsaved tags", func(t *testing.T) {
		p := NewPost()
		p.AddTag(&Tag{ID: 2, Name: "a"}).AddTag(NewTag("b")).AddTag(&Tag{ID: 7, Name: "c"})
		assert.Equal(t, []int{2, 7}, p.TagIDs())
	})
}

func TestPostCommentManagement(t *testing.T) {
	t.Run("add comment sets back-reference", func(t *testing.T) {
		p := &Post{ID: 1}
		c := &Comment{Author: "Test Author", Content: "Test Comment"}

		p.AddComment(c)
		assert.Len(t, p.Comments, 1)
		assert.Same(t, p, c.GetPost())
		assert.Equal(t, p.ID, c.PostID)
	})

	t.Run("add comment twice keeps one entry", func(t *testing.T) {
		p := NewPost()
		c := &Comment{Author: "Test Author", Content: "Test Comment"}

		p.AddComment(c).AddComment(c)
		assert.Len(t, p.Comments, 1)
	})

	t.Run("add nil comment", func(t *testing.T) {
		p := NewPost()
		p.AddComment(nil)
		assert.Empty(t, p.Comments)
	})

	t.Run("remove comment clears back-reference", func(t *testing.T) {
		p := &Post{ID: 1}
		c := &Comment{ID: 5, Author: "Test Author", Content: "Test Comment"}
		p.AddComment(c)

		p.RemoveComment(c)
		assert.Empty(t, p.Comments)
		assert.Nil(t, c.Post)
		assert.Zero(t, c.PostID)
	})

	t.Run("remove by persisted id clears the stored comment", func(t *testing.T) {
		p := &Post{ID: 1}
		stored := &Comment{ID: 7, Author: "Test Author", Content: "Test Comment"}
		p.AddComment(stored)

		p.RemoveComment(&Comment{ID: 7})
		assert.Empty(t, p.Comments)
		assert.Nil(t, stored.Post)
		assert.Zero(t, stored.PostID)
	})

	t.Run("remove reassigned comment keeps new owner", func(t *testing.T) {
		first := &Post{ID: 1}
		second := &Post{ID: 2}
		c := &Comment{ID: 5, Author: "Test Author", Content: "Test Comment"}
		first.AddComment(c)
		c.SetPost(second)

		first.RemoveComment(c)
		assert.Empty(t, first.Comments)
		assert.Same(t, second, c.Post)
		assert.Equal(t, 2, c.PostID)
	})

	t.Run("remove non-existent comment", func(t *testing.T) {
		p := NewPost()
		other := &Post{ID: 3}
		c := &Comment{ID: 999, Author: "Someone", Content: "x"}
		c.SetPost(other)

		p.RemoveComment(c)
		assert.Empty(t, p.Comments)
		assert.Same(t, other, c.Post)
	})
}

func TestPostNilCollectionEntries(t *testing.T) {
	p := validPost()
	tag := &Tag{ID: 3, Name: "go"}
	p.Tags = []*Tag{nil, tag}
	p.Comments = []*Comment{nil}

	assert.NotPanics(t, func() {
		assert.True(t, p.HasTag(tag))
		assert.False(t, p.HasComment(&Comment{ID: 1}))
		assert.Equal(t, []int{3}, p.TagIDs())
	})
	assert.Error(t, p.Validate())

	p.RemoveTag(tag)
	assert.Equal(t, []*Tag{nil}, p.Tags)
}

func TestPostShowView(t *testing.T) {
	p := validPost()
	p.ID = 10
	p.AddTag(&Tag{ID: 1, Name: "Go", Slug: "go"})
	p.AddComment(&Comment{ID: 1, Author: "Ann", Content: "hidden"})

	data, err := json.Marshal(p.Show())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	for _, key := range []string{"id", "title", "description", "body", "status", "category", "slug", "createdAt", "modifiedAt", "tags", "author"} {
		assert.Contains(t, out, key)
	}
	assert.NotContains(t, out, "comments")
	assert.Equal(t, float64(StatusDraft), out["status"])
	assert.Equal(t, "Draft", out["statusName"])

	tags := out["tags"].([]any)
	require.Len(t, tags, 1)
	assert.NotContains(t, tags[0].(map[string]any), "posts")
}
