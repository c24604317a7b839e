package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjerodev/dotenv/internal/domain/entities"
	"github.com/anjerodev/dotenv/internal/domain/services"
	apperrors "github.com/anjerodev/dotenv/pkg/errors"
)

const testAppURL = "http://localhost:3081"

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestRefererMiddlewareRejectsForeignOrigins(t *testing.T) {
	r := gin.New()
	r.Use(RefererMiddleware(testAppURL))
	r.GET("/api/projects", okHandler)

	cases := []struct {
		name    string
		referer string
		status  int
	}{
		{"missing referer", "", http.StatusUnauthorized},
		{"foreign referer", "https://evil.example.com/", http.StatusUnauthorized},
		{"app referer", testAppURL + "/projects", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRefererMiddlewareWhitelist(t *testing.T) {
	r := gin.New()
	r.Use(RefererMiddleware(testAppURL))
	r.GET("/api/auth/callback", okHandler)
	r.GET("/api/cron", okHandler)

	// The callback is opened from an email link and cron from a
	// scheduler; neither carries a referer.
	for _, path := range []string{"/api/auth/callback", "/api/cron"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestCronMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/api/cron", CronMiddleware("s3cret"), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/cron", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCronMiddlewareEmptySecretAlwaysDenies(t *testing.T) {
	r := gin.New()
	r.GET("/api/cron", CronMiddleware(""), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type stubUserRepo struct {
	user *entities.User
}

func (s *stubUserRepo) Create(context.Context, *entities.User) error { return nil }

func (s *stubUserRepo) GetByEmail(context.Context, string) (*entities.User, error) {
	return nil, errors.New("not found")
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*entities.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, errors.New("not found")
}

type stubSessionRepo struct {
	session *entities.Session
}

func (s *stubSessionRepo) Create(context.Context, *entities.Session) error { return nil }

func (s *stubSessionRepo) GetByToken(_ context.Context, token string) (*entities.Session, error) {
	if s.session != nil && s.session.Token == token {
		return s.session, nil
	}
	return nil, errors.New("not found")
}

func (s *stubSessionRepo) Delete(_ context.Context, token string) error {
	if s.session != nil && s.session.Token == token {
		s.session = nil
	}
	return nil
}

func (s *stubSessionRepo) DeleteExpired(context.Context) error { return nil }

func TestSessionMiddleware(t *testing.T) {
	user := &entities.User{ID: "u1", Email: "ada@example.com"}
	authSvc := services.NewAuthService(
		&stubUserRepo{user: user},
		&stubSessionRepo{session: &entities.Session{
			UserID:    "u1",
			Token:     "valid-token",
			ExpiresAt: time.Now().Add(time.Hour),
		}},
		nil, nil, nil, time.Hour, time.Minute,
	)

	r := gin.New()
	r.Use(SessionMiddleware(authSvc, "dotenv_session"))
	r.GET("/api/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": userID(c)})
	})

	// No cookie.
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown token.
	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: "dotenv_session", Value: "bogus"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid session resolves the user.
	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: "dotenv_session", Value: "valid-token"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["user"])
}

func TestHandleServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NewBadRequestError("bad"), http.StatusBadRequest},
		{apperrors.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{apperrors.NewForbiddenError("denied"), http.StatusForbidden},
		{apperrors.NewNotFoundError("missing"), http.StatusNotFound},
		{apperrors.NewInternalError("boom"), http.StatusInternalServerError},
		{errors.New("opaque"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		handleServiceError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestHandleServiceErrorValidationForm(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handleServiceError(c, apperrors.NewValidationError(map[string]string{
		"name": "The document already exist, please, use another name.",
	}))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Message string            `json:"message"`
		Form    map[string]string `json:"form"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Validation fail.", body.Message)
	assert.Contains(t, body.Form, "name")
}
