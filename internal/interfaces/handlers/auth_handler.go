package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/interfaces/dto"
)

type AuthHandler struct {
	authSvc         *services.AuthService
	cookieName      string
	appURL          string
	sessionDuration time.Duration
}

func NewAuthHandler(authSvc *services.AuthService, cookieName, appURL string, sessionDuration time.Duration) *AuthHandler {
	return &AuthHandler{
		authSvc:         authSvc,
		cookieName:      cookieName,
		appURL:          appURL,
		sessionDuration: sessionDuration,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{ID: user.ID, Email: user.Email})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	code, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Code:        code,
		CallbackURL: "/api/auth/callback?code=" + code,
	})
}

// Callback trades a one-time code for a session cookie and sends the
// browser back into the app, honoring the `from` page it came from.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	from := c.Query("from")
	if from == "" || !strings.HasPrefix(from, "/") {
		from = "/projects"
	}

	session, err := h.authSvc.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect,
			h.appURL+"/login?from="+url.QueryEscape(from))
		return
	}

	c.SetCookie(h.cookieName, session.Token, int(h.sessionDuration.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.appURL+from)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.cookieName)
	if err == nil && token != "" {
		if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
			handleServiceError(c, err)
			return
		}
	}

	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, dto.LogoutResponse{Success: true})
}

// Cron runs the scheduled maintenance sweep.
func (h *AuthHandler) Cron(c *gin.Context) {
	if err := h.authSvc.Sweep(c.Request.Context()); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
