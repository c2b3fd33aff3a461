package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/forms"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/repositories"
	"github.com/mdotsev/yatube/internal/services"
	"github.com/mdotsev/yatube/internal/storage"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const imageFolder = "posts"

// PostHandler handles the post listings, post pages and post forms
type PostHandler struct {
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	userRepository    repositories.UserRepository
	commentRepository repositories.CommentRepository
	followService     *services.FollowService
	media             storage.Storage
	perPage           int
}

// NewPostHandler creates a new PostHandler listing perPage posts per page
func NewPostHandler(
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	followService *services.FollowService,
	media storage.Storage,
	perPage int,
) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		groupRepository:   groupRepo,
		userRepository:    userRepo,
		commentRepository: commentRepo,
		followService:     followService,
		media:             media,
		perPage:           perPage,
	}
}

// RegisterPostRoutes registers post-related routes. indexCache wraps the
// index listing; loginRequired guards the forms.
func (h *PostHandler) RegisterPostRoutes(e *echo.Echo, indexCache, loginRequired echo.MiddlewareFunc) {
	e.GET("/", h.Index, indexCache)
	e.GET("/group/:slug/", h.GroupPosts)
	e.GET("/profile/:username/", h.Profile)
	e.GET("/posts/:post_id/", h.PostDetail)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/create/", h.PostCreate, loginRequired)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:post_id/edit/", h.PostEdit, loginRequired)
}

// Index lists every post
func (h *PostHandler) Index(c echo.Context) error {
	page, err := h.postRepository.GetAllPosts(c.Request().Context(), c.QueryParam("page"), h.perPage)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/index.html", echo.Map{
		"main":     true,
		"page_obj": page,
	})
}

// GroupPosts lists the posts of one group
func (h *PostHandler) GroupPosts(c echo.Context) error {
	ctx := c.Request().Context()
	group, err := h.groupRepository.GetGroupBySlug(ctx, c.Param("slug"))
	if err != nil {
		return notFoundOr(err, "Group not found")
	}
	page, err := h.postRepository.GetPostsByGroup(ctx, group.ID, c.QueryParam("page"), h.perPage)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/group_list.html", echo.Map{
		"group":    group,
		"page_obj": page,
	})
}

// Profile lists the posts of one author and tells whether the viewer follows them
func (h *PostHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return notFoundOr(err, "User not found")
	}
	page, err := h.postRepository.GetPostsByAuthor(ctx, author.ID, c.QueryParam("page"), h.perPage)
	if err != nil {
		return err
	}
	following, err := h.followService.IsFollowing(ctx, middleware.CurrentUser(c), author)
	if err != nil {
		return err
	}
	stats, err := h.followService.ProfileStats(ctx, author)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/profile.html", echo.Map{
		"author":          author,
		"following":       following,
		"page_obj":        page,
		"posts_count":     stats.Posts,
		"followers_count": stats.Followers,
		"following_count": stats.Following,
	})
}

// PostDetail shows one post with its comments and an empty comment form
func (h *PostHandler) PostDetail(c echo.Context) error {
	id, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post not found")
	}
	comments, err := h.commentRepository.GetCommentsByPostID(ctx, post.ID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/post_detail.html", echo.Map{
		"post":     post,
		"form":     forms.New(nil),
		"comments": comments,
	})
}

// PostCreate shows the post form and publishes the post on a valid submit
func (h *PostHandler) PostCreate(c echo.Context) error {
	user := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	if c.Request().Method != http.MethodPost {
		return h.renderForm(c, forms.New(nil), nil)
	}

	sub, form, err := h.bindPostForm(c)
	if err != nil {
		return err
	}
	if !form.Valid() {
		return h.renderForm(c, form, nil)
	}

	post := &models.Post{
		Text:     sub.text,
		AuthorID: user.ID,
		GroupID:  sub.groupID,
	}
	if sub.image != nil {
		key, ok, err := h.saveImage(ctx, form, sub.image)
		if err != nil {
			return err
		}
		if !ok {
			return h.renderForm(c, form, nil)
		}
		post.Image = key
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return err
	}
	log.WithFields(log.Fields{"post": post.ID, "author": user.Username}).Info("post created")
	return c.Redirect(http.StatusFound, profileURL(user.Username))
}

// PostEdit lets the author change a post. Anyone else is sent back to the
// post page and nothing is changed.
func (h *PostHandler) PostEdit(c echo.Context) error {
	id, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	user := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Post not found")
	}
	if post.AuthorID != user.ID {
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}

	if c.Request().Method != http.MethodPost {
		values := map[string]string{"text": post.Text}
		if post.GroupID != nil {
			values["group"] = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
		return h.renderForm(c, forms.New(values), post)
	}

	sub, form, err := h.bindPostForm(c)
	if err != nil {
		return err
	}
	if !form.Valid() {
		return h.renderForm(c, form, post)
	}

	oldImage := post.Image
	if sub.image != nil {
		key, ok, err := h.saveImage(ctx, form, sub.image)
		if err != nil {
			return err
		}
		if !ok {
			return h.renderForm(c, form, post)
		}
		post.Image = key
	}
	post.Text = sub.text
	post.GroupID = sub.groupID

	if err := h.postRepository.UpdatePost(ctx, post); err != nil {
		return err
	}
	if oldImage != "" && oldImage != post.Image {
		if err := h.media.Delete(ctx, oldImage); err != nil {
			log.WithError(err).WithField("key", oldImage).Warn("failed to delete replaced image")
		}
	}
	return c.Redirect(http.StatusFound, postURL(post.ID))
}

type postSubmission struct {
	text    string
	groupID *uint
	image   *multipart.FileHeader
}

// bindPostForm binds and validates text and group and picks up the optional
// image upload. Field problems end up in the returned form.
func (h *PostHandler) bindPostForm(c echo.Context) (*postSubmission, *forms.Form, error) {
	var req models.PostRequest
	if err := c.Bind(&req); err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid form payload")
	}
	req.Text = strings.TrimSpace(req.Text)
	req.Group = strings.TrimSpace(req.Group)

	form := forms.New(map[string]string{"text": req.Text, "group": req.Group})
	form.AddValidationErrors(c.Validate(&req))

	sub := &postSubmission{text: req.Text}
	if req.Group != "" && form.Error("group") == "" {
		id, err := strconv.ParseUint(req.Group, 10, 32)
		if err != nil {
			form.AddError("group", invalidChoice)
		} else {
			group, err := h.groupRepository.GetGroupByID(c.Request().Context(), uint(id))
			switch {
			case err == nil:
				sub.groupID = &group.ID
			case errors.Is(err, gorm.ErrRecordNotFound):
				form.AddError("group", invalidChoice)
			default:
				return nil, nil, err
			}
		}
	}

	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		sub.image = fh
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid image upload")
	}
	return sub, form, nil
}

const invalidChoice = "Select a valid choice. That choice is not one of the available choices."

// saveImage stores an upload; a rejected file becomes a form error (ok=false)
func (h *PostHandler) saveImage(ctx context.Context, form *forms.Form, fh *multipart.FileHeader) (string, bool, error) {
	key, err := storage.SaveImage(ctx, h.media, imageFolder, fh)
	switch {
	case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrImageTooLarge):
		form.AddError("image", err.Error())
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return key, true, nil
}

func (h *PostHandler) renderForm(c echo.Context, form *forms.Form, post *models.Post) error {
	groups, err := h.groupRepository.GetGroups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/create_post.html", echo.Map{
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
		"post":    post,
	})
}
