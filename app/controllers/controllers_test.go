package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"quill/app/models"
	"quill/app/repositories/mock"
	"quill/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *mock.Store
	posts    *services.PostService
	router   *mux.Router
	category *models.Category
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := mock.NewStore()
	repos := services.Repositories{
		Posts:      store.Posts,
		Comments:   store.Comments,
		Tags:       store.Tags,
		Categories: store.Categories,
		Authors:    store.Authors,
	}
	postService := services.NewPostService(repos)
	pc := NewPostController(postService, 2)
	cc := NewCommentController(services.NewCommentService(repos))
	tc := NewTaxonomyController(services.NewTaxonomyService(repos))

	router := mux.NewRouter()
	// Register routes manually since routes imports this package
	router.HandleFunc("/api/posts", pc.Index).Methods("GET")
	router.HandleFunc("/api/posts", pc.Create).Methods("POST")
	router.HandleFunc("/api/posts/slug/{slug}", pc.ShowBySlug).Methods("GET")
	router.HandleFunc("/api/posts/{id:[0-9]+}", pc.Show).Methods("GET")
	router.HandleFunc("/api/posts/{id:[0-9]+}", pc.Edit).Methods("PUT")
	router.HandleFunc("/api/posts/{id:[0-9]+}", pc.Delete).Methods("DELETE")
	router.HandleFunc("/api/posts/{id:[0-9]+}/status", pc.SetStatus).Methods("PUT")
	router.HandleFunc("/api/posts/{id:[0-9]+}/tags", pc.AddTag).Methods("POST")
	router.HandleFunc("/api/posts/{id:[0-9]+}/tags/{tagId:[0-9]+}", pc.RemoveTag).Methods("DELETE")
	router.HandleFunc("/api/posts/{postId:[0-9]+}/comments", cc.Index).Methods("GET")
	router.HandleFunc("/api/posts/{postId:[0-9]+}/comments", cc.Create).Methods("POST")
	router.HandleFunc("/api/comments/{id:[0-9]+}", cc.Edit).Methods("PUT")
	router.HandleFunc("/api/comments/{id:[0-9]+}", cc.Delete).Methods("DELETE")
	router.HandleFunc("/api/categories", tc.Categories).Methods("GET")
	router.HandleFunc("/api/categories", tc.CreateCategory).Methods("POST")
	router.HandleFunc("/api/categories/{id:[0-9]+}", tc.DeleteCategory).Methods("DELETE")
	router.HandleFunc("/api/authors", tc.Authors).Methods("GET")
	router.HandleFunc("/api/authors", tc.CreateAuthor).Methods("POST")
	router.HandleFunc("/api/authors/{id:[0-9]+}", tc.DeleteAuthor).Methods("DELETE")
	router.HandleFunc("/api/tags", tc.Tags).Methods("GET")
	router.HandleFunc("/api/tags", tc.CreateTag).Methods("POST")
	router.HandleFunc("/api/tags/{id:[0-9]+}", tc.DeleteTag).Methods("DELETE")
	router.HandleFunc("/api/tags/{id:[0-9]+}/posts", pc.ByTag).Methods("GET")

	category := models.NewCategory("General")
	require.NoError(t, store.Categories.Create(category))

	return &testEnv{store: store, posts: postService, router: router, category: category}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createPost(t *testing.T, title string, tags ...string) *models.Post {
	t.Helper()
	post := models.NewPost().
		SetTitle(title).
		SetDescription("Description").
		SetBody("Body").
		SetCategory(&models.Category{ID: e.category.ID})
	for _, name := range tags {
		post.AddTag(&models.Tag{Name: name})
	}
	require.NoError(t, e.posts.CreatePost(post))
	return post
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
