package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/repositories"
	"github.com/mdotsev/yatube/internal/services"
)

// FollowHandler handles follow/unfollow requests
type FollowHandler struct {
	userRepository repositories.UserRepository
	followService  *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(userRepo repositories.UserRepository, followService *services.FollowService) *FollowHandler {
	return &FollowHandler{
		userRepository: userRepo,
		followService:  followService,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(e *echo.Echo, loginRequired echo.MiddlewareFunc) {
	methods := []string{http.MethodGet, http.MethodPost}
	e.Match(methods, "/profile/:username/follow/", h.ProfileFollow, loginRequired)
	e.Match(methods, "/profile/:username/unfollow/", h.ProfileUnfollow, loginRequired)
}

// ProfileFollow follows the author and returns to their profile
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err, "User not found")
	}
	if _, err := h.followService.Follow(ctx, middleware.CurrentUser(c), author); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}

// ProfileUnfollow unfollows the author and returns to their profile.
// Unfollowing an author you do not follow is a 404.
func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err, "User not found")
	}
	if err := h.followService.Unfollow(ctx, middleware.CurrentUser(c), author); err != nil {
		if errors.Is(err, repositories.ErrFollowNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "You do not follow this author")
		}
		return err
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}
