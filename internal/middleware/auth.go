package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// ContextUserID is the gin context key holding the authenticated
// account id.
const ContextUserID = "userID"

// AuthMiddleware validates the bearer token and stores the caller's
// account id in the request context.
func AuthMiddleware(jwtSecret string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Invalid authorization header format"})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			log.WithError(err).Debug("token parsing failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Invalid token"})
			return
		}
		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Invalid token"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// RequireAdmin gates a route group to accounts with the admin role.
// The role is read from the database, not the token, so demotions take
// effect immediately.
func RequireAdmin(db *sqlx.DB, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		var role string
		if err := db.GetContext(c.Request.Context(), &role, `SELECT role FROM users WHERE id = $1`, userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Account not found"})
			return
		}
		if role != "admin" {
			log.WithField("user_id", userID).Warn("non-admin call to admin endpoint")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "Admin access required"})
			return
		}
		c.Next()
	}
}
