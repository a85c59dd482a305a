package controller

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// extractBearerToken pulls a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "authorization token is required"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}
