package controllers

import (
	"net/http"

	"quill/app/models"
	"quill/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

type commentPayload struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Index handles listing the comments of a post
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "postId")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comments, err := cc.commentService.ListPostComments(postID)
	if err != nil {
		sendFailure(w, "Failed to fetch comments", err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Create handles creating a new comment
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "postId")
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var payload commentPayload
	if err := decode(r, &payload); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	comment := &models.Comment{
		PostID:  postID,
		Author:  payload.Author,
		Content: payload.Content,
	}
	if err := cc.commentService.CreateComment(comment); err != nil {
		sendFailure(w, "Failed to create comment", err)
		return
	}

	sendJSON(w, http.StatusCreated, comment)
}

// Edit handles updating a comment's author and content
func (cc *CommentController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	var payload commentPayload
	if err := decode(r, &payload); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	comment := &models.Comment{
		ID:      id,
		Author:  payload.Author,
		Content: payload.Content,
	}
	if err := cc.commentService.UpdateComment(comment); err != nil {
		sendFailure(w, "Failed to update comment", err)
		return
	}

	sendJSON(w, http.StatusOK, comment)
}

// Delete handles deleting a comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		sendError(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := cc.commentService.DeleteComment(id); err != nil {
		sendFailure(w, "Failed to delete comment", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
