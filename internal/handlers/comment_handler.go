package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// CommentHandler handles comment submission
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(e *echo.Echo, loginRequired echo.MiddlewareFunc) {
	e.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:post_id/comment/", h.AddComment, loginRequired)
}

// AddComment stores a comment by the current user and returns to the post.
// An invalid comment is dropped without feedback.
func (h *CommentHandler) AddComment(c echo.Context) error {
	id, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post not found")
	}

	var req models.CommentRequest
	if c.Request().Method == http.MethodPost {
		if err := c.Bind(&req); err != nil {
			return c.Redirect(http.StatusFound, postURL(post.ID))
		}
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := c.Validate(&req); err != nil {
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}

	user := middleware.CurrentUser(c)
	comment := &models.Comment{
		Text:     req.Text,
		PostID:   post.ID,
		AuthorID: user.ID,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return err
	}
	log.WithFields(log.Fields{"post": post.ID, "author": user.Username}).Info("comment added")
	return c.Redirect(http.StatusFound, postURL(post.ID))
}
