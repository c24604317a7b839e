package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/interfaces/dto"
	"github.com/anjerodev/dotenv/pkg/errors"
)

const userIDKey = "userID"

func respondWithError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, dto.ErrorResponse{Message: message})
}

func handleServiceError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *errors.ValidationError:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: e.Message,
			Form:    e.Form,
		})
	case *errors.BadRequestError:
		respondWithError(c, http.StatusBadRequest, e.Message)
	case *errors.UnauthorizedError:
		respondWithError(c, http.StatusUnauthorized, e.Message)
	case *errors.ForbiddenError:
		respondWithError(c, http.StatusForbidden, e.Message)
	case *errors.NotFoundError:
		respondWithError(c, http.StatusNotFound, e.Message)
	case *errors.InternalError:
		respondWithError(c, http.StatusInternalServerError, e.Message)
	default:
		respondWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

// userID returns the authenticated user set by SessionMiddleware.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func CORSMiddleware(appURL string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", appURL)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}

func HeadToGetMiddleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		if c.Request.Method == "HEAD" {
			c.Request.Method = "GET"
			c.Writer = &headResponseWriter{c.Writer}
		}
		c.Next()
	})
}

type headResponseWriter struct {
	gin.ResponseWriter
}

func (w *headResponseWriter) Write(data []byte) (int, error) {
	return len(data), nil
}

// refererWhitelist holds the API paths reachable without a referer:
// the auth callback is opened from an email link and the cron endpoint
// is called by the scheduler.
var refererWhitelist = []string{
	"/api/auth/callback",
	"/api/cron",
}

// RefererMiddleware rejects API calls whose referer does not point at
// the app itself.
func RefererMiddleware(appURL string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, allowed := range refererWhitelist {
			if strings.HasPrefix(path, allowed) {
				c.Next()
				return
			}
		}

		referer := c.Request.Referer()
		if referer == "" || !strings.Contains(referer, appURL) {
			respondWithError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Next()
	})
}

// SessionMiddleware resolves the session cookie to a user and stores
// the user id on the context. Requests without a valid session get 401.
func SessionMiddleware(authSvc *services.AuthService, cookieName string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			respondWithError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		user, err := authSvc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	})
}

// CronMiddleware guards the scheduled endpoint with a bearer secret.
func CronMiddleware(secret string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if secret == "" || auth != "Bearer "+secret {
			respondWithError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	})
}
