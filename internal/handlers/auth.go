package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/auth"
	"github.com/ukydev/schoolbus-tracker/internal/middleware"
	"github.com/ukydev/schoolbus-tracker/internal/models"
	"github.com/ukydev/schoolbus-tracker/internal/web"
)

const (
	msgMissingFields = "Username and password are required"
	msgInvalidRole   = "Invalid role"
)

// AuthHandler handles the login screen and logout. Credentials are never
// checked: the selected role alone decides where the user goes.
type AuthHandler struct {
	authService *auth.Service
	pages       *web.Pages
	validate    *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, pages *web.Pages) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		pages:       pages,
		validate:    validator.New(),
	}
}

// LoginPage renders the login screen
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, web.LoginPage{Role: models.RoleParent})
}

// Login handles the login form and redirects to the role's dashboard
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	loginReq := models.LoginRequest{
		Role:     models.Role(r.PostFormValue("role")),
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	if msg := h.check(loginReq); msg != "" {
		h.renderLogin(w, http.StatusBadRequest, web.LoginPage{
			Error:    msg,
			Role:     models.RoleOrDefault(loginReq.Role),
			Username: loginReq.Username,
		})
		return
	}

	session := sessionFor(loginReq)
	token, err := h.authService.GenerateToken(session)
	if err != nil {
		log.WithError(err).Error("Failed to generate session token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	logSignIn(session)
	http.Redirect(w, r, DashboardPath(session.Role), http.StatusSeeOther)
}

// APILogin handles a JSON login and answers with the token and redirect
func (h *AuthHandler) APILogin(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if msg := h.check(loginReq); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	session := sessionFor(loginReq)
	token, err := h.authService.GenerateToken(session)
	if err != nil {
		log.WithError(err).Error("Failed to generate session token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, token)
	logSignIn(session)

	response := models.LoginResponse{
		Token:    token,
		Role:     session.Role,
		Redirect: DashboardPath(session.Role),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Logout clears the session cookie and goes back to the login screen
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if claims, ok := middleware.GetSessionFromContext(r.Context()); ok {
		log.WithFields(log.Fields{"username": claims.Username, "role": claims.Role}).Info("User signed out")
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// check returns a user-facing message when the request is unusable.
func (h *AuthHandler) check(loginReq models.LoginRequest) string {
	err := h.validate.Struct(loginReq)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Role" {
				return msgInvalidRole
			}
		}
	}
	return msgMissingFields
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.authService.Expiry()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, page web.LoginPage) {
	if err := h.pages.Render(w, status, web.PageLogin, page); err != nil {
		log.WithError(err).Error("Failed to render login page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// sessionFor keeps the username and the role; the password goes nowhere.
func sessionFor(loginReq models.LoginRequest) models.Session {
	return models.Session{
		Username: loginReq.Username,
		Role:     models.RoleOrDefault(loginReq.Role),
	}
}

func logSignIn(session models.Session) {
	log.WithFields(log.Fields{
		"username": session.Username,
		"role":     session.Role,
	}).Info("User signed in")
}
