package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"quill/app/middleware"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*mux.Router, *models.Post) {
	t.Helper()
	store, err := repositories.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	repos := services.FromStore(store)
	router := SetupRoutes(repos, Options{PerPage: 10, Logger: zerolog.Nop()})

	category := models.NewCategory("General")
	require.NoError(t, store.Categories.Create(category))

	// Create a test post.
	post := models.NewPost().
		SetTitle("Test Post").
		SetDescription("Summary").
		SetBody("This is a test post").
		SetCategory(category).
		AddTag(models.NewTag("intro"))
	require.NoError(t, services.NewPostService(repos).CreatePost(post))

	return router, post
}

func TestSetupRoutes(t *testing.T) {
	router, post := setupTestRouter(t)
	id := strconv.Itoa(post.ID)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedHeader string
	}{
		{"GET posts", "GET", "/api/posts", http.StatusOK, "application/json"},
		{"GET single post", "GET", "/api/posts/" + id, http.StatusOK, "application/json"},
		{"GET post by slug", "GET", "/api/posts/slug/test-post", http.StatusOK, "application/json"},
		{"GET post comments", "GET", "/api/posts/" + id + "/comments", http.StatusOK, "application/json"},
		{"GET categories", "GET", "/api/categories", http.StatusOK, "application/json"},
		{"GET authors", "GET", "/api/authors", http.StatusOK, "application/json"},
		{"GET tags", "GET", "/api/tags", http.StatusOK, "application/json"},
		{"Invalid post ID", "GET", "/api/posts/invalid", http.StatusNotFound, "application/json"},
		{"Missing post", "GET", "/api/posts/999", http.StatusNotFound, "application/json"},
		{"Wrong method", "PATCH", "/api/posts/" + id, http.StatusMethodNotAllowed, "application/json"},
		{"Health", "GET", "/healthz", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedHeader, w.Header().Get("Content-Type"))
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/posts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set(middleware.RequestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(middleware.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	// Generate a request so the HTTP counters have a sample.
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/posts", nil))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quill_http_requests_total")
	assert.Contains(t, w.Body.String(), "quill_store_mutations_total")
}

func TestAPIRoutes(t *testing.T) {
	router, post := setupTestRouter(t)

	send := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("GET /api/posts returns list with pagination", func(t *testing.T) {
		w := send("GET", "/api/posts", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Page  int               `json:"page"`
			Posts []models.PostView `json:"posts"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Equal(t, 1, res.Page)
		require.Len(t, res.Posts, 1)
		require.Equal(t, post.ID, res.Posts[0].ID)
		require.Equal(t, "Test Post", res.Posts[0].Title)
		require.Equal(t, "General", res.Posts[0].Category.Name)
		require.Len(t, res.Posts[0].Tags, 1)
	})

	t.Run("comment lifecycle through the badger store", func(t *testing.T) {
		base := "/api/posts/" + strconv.Itoa(post.ID) + "/comments"
		w := send("POST", base, map[string]string{"author": "Reader", "content": "First!"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var comment models.Comment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))

		w = send("DELETE", "/api/comments/"+strconv.Itoa(comment.ID), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = send("GET", base, nil)
		var comments []models.Comment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
		assert.Empty(t, comments)
	})

	t.Run("deleting a post keeps its tag", func(t *testing.T) {
		w := send("POST", "/api/posts/"+strconv.Itoa(post.ID)+"/comments",
			map[string]string{"author": "Reader", "content": "Going away"})
		require.Equal(t, http.StatusCreated, w.Code)

		w = send("DELETE", "/api/posts/"+strconv.Itoa(post.ID), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = send("GET", "/api/tags", nil)
		var tags []models.Tag
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tags))
		require.Len(t, tags, 1)
		assert.Equal(t, "intro", tags[0].Name)

		w = send("GET", "/api/posts/"+strconv.Itoa(post.ID)+"/comments", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
