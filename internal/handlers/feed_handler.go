package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/services"
)

// FeedHandler serves the personalised feed
type FeedHandler struct {
	followService *services.FollowService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(followService *services.FollowService) *FeedHandler {
	return &FeedHandler{followService: followService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(e *echo.Echo, loginRequired echo.MiddlewareFunc) {
	e.GET("/follow/", h.FollowIndex, loginRequired)
}

// FollowIndex lists the posts of the authors the current user follows
func (h *FeedHandler) FollowIndex(c echo.Context) error {
	page, err := h.followService.Feed(c.Request().Context(), middleware.CurrentUser(c), c.QueryParam("page"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/follow.html", echo.Map{
		"follow":   true,
		"page_obj": page,
	})
}
