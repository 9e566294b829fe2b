package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/service"
)

const SubjectContextKey = "subject"

// Auth requires a bearer token issued by authService. When owner
// authentication is not configured every request passes.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.Enabled() {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			return
		}

		subject, apiErr := authService.ParseToken(token)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}

		c.Set(SubjectContextKey, subject)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// EventSource cannot set headers.
		if token := c.Query("access_token"); token != "" && c.Request.Method == "GET" {
			return token, true
		}
		writeError(c, apperrors.Unauthorized("missing authorization header"))
		return "", false
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeError(c, apperrors.Unauthorized("invalid authorization format"))
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		writeError(c, apperrors.Unauthorized("invalid authorization format"))
		return "", false
	}
	return token, true
}

func Subject(c *gin.Context) string {
	value, ok := c.Get(SubjectContextKey)
	if !ok {
		return ""
	}
	subject, ok := value.(string)
	if !ok {
		return ""
	}
	return subject
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"error": gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
			"details": apiErr.Details,
		},
	})
}
