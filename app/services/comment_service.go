package services

import (
	"errors"
	"fmt"

	"quill/app/metrics"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/rs/zerolog"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	logger      zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(repos Repositories) *CommentService {
	return &CommentService{
		commentRepo: repos.Comments,
		postRepo:    repos.Posts,
		logger:      zerolog.Nop(),
	}
}

// WithLogger sets the logger used for mutation events.
func (s *CommentService) WithLogger(logger zerolog.Logger) *CommentService {
	s.logger = logger.With().Str("service", "comments").Logger()
	return s
}

// CreateComment attaches a new comment to its post and stores it
func (s *CommentService) CreateComment(comment *models.Comment) (err error) {
	m := metrics.StartMutation("comment", "create")
	defer func() { m.Done(err) }()

	if comment.PostID <= 0 {
		return invalid("invalid post ID")
	}
	post, err := s.postRepo.GetByID(comment.PostID)
	if err != nil {
		return fmt.Errorf("post not found: %w", err)
	}

	comment.ID = 0
	post.AddComment(comment)
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return invalidErr(err)
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return err
	}
	s.logger.Info().Int("comment_id", comment.ID).Int("post_id", comment.PostID).Msg("comment created")
	return nil
}

// GetComment retrieves a comment by ID with its post attached
func (s *CommentService) GetComment(id int) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(comment.PostID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if post != nil {
		post.AddComment(comment)
	}
	return comment, nil
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	// Verify post exists
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, fmt.Errorf("post not found: %w", err)
	}

	return s.commentRepo.ListByPost(postID)
}

// UpdateComment updates an existing comment with validation. The creation
// time and owning post are preserved.
func (s *CommentService) UpdateComment(comment *models.Comment) (err error) {
	m := metrics.StartMutation("comment", "update")
	defer func() { m.Done(err) }()

	existing, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return err
	}
	if comment.PostID != 0 && existing.PostID != comment.PostID {
		return invalid("comment does not belong to specified post")
	}

	comment.CreatedAt = existing.CreatedAt
	comment.PostID = existing.PostID
	if err := comment.Validate(); err != nil {
		return invalidErr(err)
	}

	return s.commentRepo.Update(comment)
}

// DeleteComment removes a comment from its post. A comment without a post is
// never kept, so detaching it deletes it.
func (s *CommentService) DeleteComment(id int) (err error) {
	m := metrics.StartMutation("comment", "delete")
	defer func() { m.Done(err) }()

	comment, err := s.GetComment(id)
	if err != nil {
		return err
	}
	if post := comment.GetPost(); post != nil {
		post.RemoveComment(comment)
	}

	if err := s.commentRepo.Delete(id); err != nil {
		return err
	}
	metrics.CascadedComments.Inc()
	s.logger.Info().Int("comment_id", id).Msg("comment deleted")
	return nil
}
