package mw

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"studio-booking-backend/internal/admin"
)

// CallerEmailKey is the gin context key holding the authenticated
// caller's email.
const CallerEmailKey = "callerEmail"

// Identity validates the Bearer token minted by the Google-auth front
// end and stores the caller's email on the request context. Requests
// without a valid token are rejected.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		email, _ := claims["email"].(string)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is missing an email claim"})
			return
		}

		c.Set(CallerEmailKey, email)
		c.Next()
	}
}

// CallerEmail returns the authenticated caller's email, if any.
func CallerEmail(c *gin.Context) string {
	email, _ := c.Get(CallerEmailKey)
	s, _ := email.(string)
	return s
}

// RequireAdmin rejects callers the gate does not authorize. The gate
// fails closed, so a store outage here reads as "not an admin".
func RequireAdmin(gate *admin.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gate.IsAdmin(c.Request.Context(), CallerEmail(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
			return
		}
		c.Next()
	}
}
