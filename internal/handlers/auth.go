package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/forms"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/repositories"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       *middleware.Sessions
	firebaseAuth   middleware.TokenVerifier
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in which
// case Firebase login is not offered.
func NewAuthHandler(userRepo repositories.UserRepository, sessions *middleware.Sessions, firebaseAuth middleware.TokenVerifier) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
		firebaseAuth:   firebaseAuth,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	methods := []string{http.MethodGet, http.MethodPost}
	g.Match(methods, "/signup/", h.Signup)
	g.Match(methods, "/login/", h.Login)
	g.Match(methods, "/logout/", h.Logout)
	if h.firebaseAuth != nil {
		g.POST("/firebase/", h.FirebaseLogin)
	}
}

type formField struct {
	Name  string
	Label string
	Type  string
}

var signupFields = []formField{
	{Name: "first_name", Label: "First name", Type: "text"},
	{Name: "last_name", Label: "Last name", Type: "text"},
	{Name: "username", Label: "Username", Type: "text"},
	{Name: "email", Label: "Email address", Type: "email"},
	{Name: "password1", Label: "Password", Type: "password"},
	{Name: "password2", Label: "Password confirmation", Type: "password"},
}

// Signup creates a local account and logs it in
func (h *AuthHandler) Signup(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return h.renderSignup(c, forms.New(nil))
	}

	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form payload")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	form := forms.New(map[string]string{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"username":   req.Username,
		"email":      req.Email,
	})
	form.AddValidationErrors(c.Validate(&req))

	ctx := c.Request().Context()
	if form.Error("username") == "" {
		exists, err := h.userRepository.UsernameExists(ctx, req.Username)
		if err != nil {
			return err
		}
		if exists {
			form.AddError("username", "A user with that username already exists.")
		}
	}
	if !form.Valid() {
		return h.renderSignup(c, form)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return err
	}
	log.WithField("username", user.Username).Info("user signed up")

	if err := h.sessions.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) renderSignup(c echo.Context, form *forms.Form) error {
	return c.Render(http.StatusOK, "users/signup.html", echo.Map{
		"form":   form,
		"fields": signupFields,
	})
}

// Login checks the credentials and redirects to next
func (h *AuthHandler) Login(c echo.Context) error {
	next := c.QueryParam("next")
	if c.Request().Method != http.MethodPost {
		return h.renderLogin(c, forms.New(nil), next)
	}

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form payload")
	}
	if v := c.FormValue("next"); v != "" {
		next = v
	}
	req.Username = strings.TrimSpace(req.Username)

	form := forms.New(map[string]string{"username": req.Username})
	form.AddValidationErrors(c.Validate(&req))
	if !form.Valid() {
		return h.renderLogin(c, form, next)
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if user == nil || user.Password == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		form.AddNonFieldError("Please enter a correct username and password. Note that both fields may be case-sensitive.")
		return h.renderLogin(c, form, next)
	}

	if err := h.sessions.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) renderLogin(c echo.Context, form *forms.Form, next string) error {
	return c.Render(http.StatusOK, "users/login.html", echo.Map{
		"form": form,
		"next": next,
	})
}

// Logout clears the session
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c)
	return c.Render(http.StatusOK, "users/logged_out.html", nil)
}

// FirebaseLogin verifies a Firebase ID token and logs in the linked user,
// creating one on first sight
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	idToken := c.FormValue("id_token")
	if idToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id_token is required")
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	emailVerified, _ := token.Claims["email_verified"].(bool)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID)
	switch {
	case err == nil:
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	case email != "" && emailVerified:
		// only an unlinked local account may be claimed through its email
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if user != nil && user.FirebaseUID != nil {
			user = nil
		}
	}

	uid := token.UID
	if user == nil {
		username, err := h.uniqueUsername(c, email, name)
		if err != nil {
			return err
		}
		user = &models.User{Username: username, Email: email, FirebaseUID: &uid}
		if name != "" {
			user.FirstName = name
		}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return err
		}
		log.WithFields(log.Fields{"username": user.Username, "uid": uid}).Info("user created from firebase login")
	} else if user.FirebaseUID == nil {
		user.FirebaseUID = &uid
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return err
		}
	}

	if err := h.sessions.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, safeNext(c.FormValue("next")))
}

var usernameReplacer = regexp.MustCompile(`[^\w.@+-]+`)

// uniqueUsername derives a free username from the email local part or the
// display name
func (h *AuthHandler) uniqueUsername(c echo.Context, email, name string) (string, error) {
	base := name
	if at := strings.IndexByte(email, '@'); at > 0 {
		base = email[:at]
	}
	base = usernameReplacer.ReplaceAllString(base, "")
	if base == "" {
		base = "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for i := 1; ; i++ {
		exists, err := h.userRepository.UsernameExists(c.Request().Context(), candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
