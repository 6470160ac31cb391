package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/necatisahhin/zeroAiBackend/internal/security"
)

const userIDKey = "user_id"

// TokenVerifier is satisfied by *security.TokenCodec.
type TokenVerifier interface {
	Verify(kind security.TokenKind, token string) (*security.Claims, error)
}

// Auth admits requests carrying a valid access token. Validity is purely
// cryptographic; no store is consulted.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			abortWithCode(c, http.StatusUnauthorized, "AUTH_MIDDLEWARE_01", "Access token is required")
			return
		}

		claims, err := verifier.Verify(security.TokenAccess, token)
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				abortWithCode(c, http.StatusUnauthorized, "AUTH_MIDDLEWARE_02", "Access token expired")
				return
			}
			abortWithCode(c, http.StatusUnauthorized, "AUTH_MIDDLEWARE_03", "Invalid access token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Request = c.Request.WithContext(security.ContextWithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// CurrentUserID returns the subject stored by Auth.
func CurrentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDKey)
	return userID, userID != ""
}

func abortWithCode(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
