package controllers

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"quill/app/models"
	"quill/app/services"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/sha3"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	perPage     int
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, perPage int) *PostController {
	if perPage < 1 {
		perPage = 10
	}
	return &PostController{
		postService: postService,
		perPage:     perPage,
	}
}

// postPayload is the writable shape of a post. Tags may be given by name,
// by ID, or both.
type postPayload struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Body        string        `json:"body"`
	Status      models.Status `json:"status"`
	Slug        string        `json:"slug"`
	CategoryID  int           `json:"categoryId"`
	AuthorID    int           `json:"authorId"`
	Tags        []string      `json:"tags"`
	TagIDs      []int         `json:"tagIds"`
}

func (p postPayload) toPost() *models.Post {
	post := models.NewPost().
		SetTitle(p.Title).
		SetDescription(p.Description).
		SetBody(p.Body).
		SetStatus(p.Status)
	// SetTitle derives a slug; only a slug sent by the client counts here.
	post.SetSlug(p.Slug)
	if p.CategoryID != 0 {
		post.SetCategory(&models.Category{ID: p.CategoryID})
	}
	if p.AuthorID != 0 {
		post.SetAuthor(&models.Author{ID: p.AuthorID})
	}
	for _, id := range p.TagIDs {
		post.AddTag(&models.Tag{ID: id})
	}
	for _, name := range p.Tags {
		post.AddTag(&models.Tag{Name: name})
	}
	return post
}

// Index handles listing posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r, pc.perPage)

	posts, err := pc.postService.ListPosts(page, perPage)
	if err != nil {
		sendFailure(w, "Failed to fetch posts", err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"posts":   models.ShowAll(posts),
		"page":    page,
		"perPage": perPage,
	})
}

// Show handles displaying a single post. The response carries an ETag
// derived from the rendered view.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := pc.postService.GetPost(id)
	if err != nil {
		sendFailure(w, "Post not found", err)
		return
	}

	body, err := json.Marshal(post.Show())
	if err != nil {
		sendError(w, "Failed to encode post", http.StatusInternalServerError)
		return
	}
	sum := sha3.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(append(body, '\n'))
}

// etagMatches applies the weak comparison of If-None-Match: "*" or any
// listed tag, with or without the W/ prefix.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// ShowBySlug handles displaying a post found through its slug
func (pc *PostController) ShowBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPostBySlug(mux.Vars(r)["slug"])
	if err != nil {
		sendFailure(w, "Post not found", err)
		return
	}
	sendJSON(w, http.StatusOK, post.Show())
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var payload postPayload
	if err := decode(r, &payload); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	post := payload.toPost()
	if err := pc.postService.CreatePost(post); err != nil {
		sendFailure(w, "Failed to create post", err)
		return
	}

	sendJSON(w, http.StatusCreated, post.Show())
}

// Edit handles replacing an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var payload postPayload
	if err := decode(r, &payload); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	post := payload.toPost()
	post.ID = id

	if err := pc.postService.UpdatePost(post); err != nil {
		sendFailure(w, "Failed to update post", err)
		return
	}

	sendJSON(w, http.StatusOK, post.Show())
}

// Delete handles deleting a post along with its comments
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := pc.postService.DeletePost(id); err != nil {
		sendFailure(w, "Failed to delete post", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PUT /api/posts/{id}/status with {"status": 3} or {"status": "Active"}
func (pc *PostController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		Status models.Status `json:"status"`
	}
	if err := decode(r, &payload); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.SetStatus(id, payload.Status)
	if err != nil {
		sendFailure(w, "Failed to change status", err)
		return
	}
	sendJSON(w, http.StatusOK, post.Show())
}

// AddTag handles attaching a tag given as {"id": 1} or {"name": "go"}
func (pc *PostController) AddTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var tag models.Tag
	if err := decode(r, &tag); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.AddTag(id, &tag)
	if err != nil {
		sendFailure(w, "Failed to add tag", err)
		return
	}
	sendJSON(w, http.StatusOK, post.Show())
}

// RemoveTag handles detaching a tag from a post
func (pc *PostController) RemoveTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}
	tagID, ok := pathID(r, "tagId")
	if !ok {
		sendError(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}

	post, err := pc.postService.RemoveTag(id, tagID)
	if err != nil {
		sendFailure(w, "Failed to remove tag", err)
		return
	}
	sendJSON(w, http.StatusOK, post.Show())
}

// ByTag handles listing the posts carrying a tag
func (pc *PostController) ByTag(w http.ResponseWriter, r *http.Request) {
	tagID, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}
	page, perPage := pagination(r, pc.perPage)

	posts, err := pc.postService.ListPostsByTag(tagID, page, perPage)
	if err != nil {
		sendFailure(w, "Failed to fetch posts", err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"posts":   models.ShowAll(posts),
		"page":    page,
		"perPage": perPage,
	})
}
