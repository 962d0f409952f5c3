package repositories

import (
	"testing"

	"quill/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository(t *testing.T) {
	store := newTestStore(t)
	repo := store.Categories

	used := models.NewCategory("Used")
	unused := &models.Category{Name: "Unused Things"}
	require.NoError(t, repo.Create(used))
	require.NoError(t, repo.Create(unused))
	assert.Equal(t, "unused-things", unused.Slug)

	got, err := repo.GetByID(used.ID)
	require.NoError(t, err)
	assert.Equal(t, "Used", got.Name)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Posts.Create(newTestPost("In Category", used)))

	assert.ErrorIs(t, repo.Delete(used.ID), ErrConflict)
	require.NoError(t, repo.Delete(unused.ID))
	assert.ErrorIs(t, repo.Delete(unused.ID), ErrNotFound)

	_, err = repo.GetByID(unused.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorRepository(t *testing.T) {
	store := newTestStore(t)
	repo := store.Authors
	category := seedCategory(t, store)

	writer := models.NewAuthor("Jane Writer", "jane@example.com")
	idle := models.NewAuthor("Idle Person", "")
	require.NoError(t, repo.Create(writer))
	require.NoError(t, repo.Create(idle))

	got, err := repo.GetByID(writer.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	post := newTestPost("Authored", category)
	post.SetAuthor(writer)
	require.NoError(t, store.Posts.Create(post))

	assert.ErrorIs(t, repo.Delete(writer.ID), ErrConflict)
	require.NoError(t, repo.Delete(idle.ID))
	assert.ErrorIs(t, repo.Delete(idle.ID), ErrNotFound)
}
