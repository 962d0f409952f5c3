package controllers

import (
	"net/http"
	"strconv"
	"testing"

	"quill/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentController(t *testing.T) {
	env := setupTestEnv(t)
	post := env.createPost(t, "Commented")
	base := "/api/posts/" + strconv.Itoa(post.ID) + "/comments"

	var created models.Comment
	t.Run("create comment", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base, map[string]string{
			"author":  "Test Author",
			"content": "Test comment content",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		decodeBody(t, w, &created)
		assert.NotZero(t, created.ID)
		assert.Equal(t, post.ID, created.PostID)
		assert.False(t, created.CreatedAt.IsZero())
	})

	t.Run("create comment validation", func(t *testing.T) {
		w := env.do(t, http.MethodPost, base, map[string]string{"author": "A", "content": ""})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = env.do(t, http.MethodPost, "/api/posts/9999/comments", map[string]string{
			"author":  "Test Author",
			"content": "Orphan",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list comments", func(t *testing.T) {
		w := env.do(t, http.MethodGet, base, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var comments []models.Comment
		decodeBody(t, w, &comments)
		require.Len(t, comments, 1)
		assert.Equal(t, "Test Author", comments[0].Author)
	})

	t.Run("update comment", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/comments/"+strconv.Itoa(created.ID), map[string]string{
			"author":  "Updated Author",
			"content": "Updated content",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var updated models.Comment
		decodeBody(t, w, &updated)
		assert.Equal(t, "Updated Author", updated.Author)
		assert.Equal(t, post.ID, updated.PostID)
	})

	t.Run("delete comment", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/comments/"+strconv.Itoa(created.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(t, http.MethodDelete, "/api/comments/"+strconv.Itoa(created.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
