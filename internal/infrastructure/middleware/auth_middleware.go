package middleware

import (
	"errors"
	"net/http"
	"strings"

	"roomgate/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// CallerClaims is the verified identity attached to every request by the
// external identity provider. Only verification happens here; issuing these
// tokens is out of scope.
type CallerClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the caller identity, preferring the subject claim.
func (c *CallerClaims) Identity() domain.Identity {
	if c.Subject != "" {
		return domain.Identity(c.Subject)
	}
	return domain.Identity(c.Name)
}

// AuthMiddleware verifies the Bearer token and stores the caller claims in
// the request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := parseCallerToken(parts[1], secret)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("caller", claims)
		c.Next()
	}
}

func parseCallerToken(tokenString string, secret []byte) (*CallerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CallerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return nil, errInvalidToken
	}

	if claims, ok := token.Claims.(*CallerClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errInvalidToken
}

// CallerFromContext returns the verified caller claims set by AuthMiddleware.
func CallerFromContext(c *gin.Context) (*CallerClaims, bool) {
	val, exists := c.Get("caller")
	if !exists {
		return nil, false
	}
	claims, ok := val.(*CallerClaims)
	return claims, ok
}
