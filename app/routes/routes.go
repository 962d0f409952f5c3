package routes

import (
	"encoding/json"
	"net/http"

	"quill/app/controllers"
	"quill/app/middleware"
	"quill/app/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Options tunes the router.
type Options struct {
	PerPage int
	Logger  zerolog.Logger
}

// SetupRoutes wires the JSON API, /metrics and /healthz onto a new router.
func SetupRoutes(repos services.Repositories, opts Options) *mux.Router {
	logger := opts.Logger

	postService := services.NewPostService(repos).WithLogger(logger)
	commentService := services.NewCommentService(repos).WithLogger(logger)
	taxonomyService := services.NewTaxonomyService(repos).WithLogger(logger)

	postController := controllers.NewPostController(postService, opts.PerPage)
	commentController := controllers.NewCommentController(commentService)
	taxonomyController := controllers.NewTaxonomyController(taxonomyService)

	router := mux.NewRouter()

	// Apply global middleware.
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Metrics)

	router.NotFoundHandler = jsonError(http.StatusNotFound, "Not found")
	router.MethodNotAllowedHandler = jsonError(http.StatusMethodNotAllowed, "Method not allowed")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")

	// API routes with JSON content type.
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	// Posts API endpoints.
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/slug/{slug}", postController.ShowBySlug).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}", postController.Edit).Methods("PUT")
	posts.HandleFunc("/{id:[0-9]+}", postController.Delete).Methods("DELETE")
	posts.HandleFunc("/{id:[0-9]+}/status", postController.SetStatus).Methods("PUT")
	posts.HandleFunc("/{id:[0-9]+}/tags", postController.AddTag).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}/tags/{tagId:[0-9]+}", postController.RemoveTag).Methods("DELETE")

	// Comments API endpoints.
	posts.HandleFunc("/{postId:[0-9]+}/comments", commentController.Index).Methods("GET")
	posts.HandleFunc("/{postId:[0-9]+}/comments", commentController.Create).Methods("POST")
	api.HandleFunc("/comments/{id:[0-9]+}", commentController.Edit).Methods("PUT")
	api.HandleFunc("/comments/{id:[0-9]+}", commentController.Delete).Methods("DELETE")

	// Taxonomy API endpoints.
	api.HandleFunc("/categories", taxonomyController.Categories).Methods("GET")
	api.HandleFunc("/categories", taxonomyController.CreateCategory).Methods("POST")
	api.HandleFunc("/categories/{id:[0-9]+}", taxonomyController.DeleteCategory).Methods("DELETE")
	api.HandleFunc("/authors", taxonomyController.Authors).Methods("GET")
	api.HandleFunc("/authors", taxonomyController.CreateAuthor).Methods("POST")
	api.HandleFunc("/authors/{id:[0-9]+}", taxonomyController.DeleteAuthor).Methods("DELETE")
	api.HandleFunc("/tags", taxonomyController.Tags).Methods("GET")
	api.HandleFunc("/tags", taxonomyController.CreateTag).Methods("POST")
	api.HandleFunc("/tags/{id:[0-9]+}", taxonomyController.DeleteTag).Methods("DELETE")
	api.HandleFunc("/tags/{id:[0-9]+}/posts", postController.ByTag).Methods("GET")

	return router
}

func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	})
}
