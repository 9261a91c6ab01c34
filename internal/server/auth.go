package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	identityKey    = "identity"
	identityHeader = "X-User-Email"
)

// Identity is the authenticated caller.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Claims is the token payload issued by the dashboard's login service.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// requireIdentity resolves the caller from a bearer token, or from the
// identity header when no JWT secret is configured.
func (s *Server) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := s.identify(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func (s *Server) identify(c *gin.Context) (Identity, error) {
	if s.jwtSecret == "" {
		email := strings.TrimSpace(c.GetHeader(identityHeader))
		if email == "" {
			return Identity{}, fmt.Errorf("missing %s header", identityHeader)
		}
		return Identity{Email: email}, nil
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if raw == "" {
		return Identity{}, fmt.Errorf("missing token")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return Identity{}, fmt.Errorf("token has no email claim")
	}
	return Identity{Email: claims.Email, Name: claims.Name}, nil
}

// currentUser returns the identity stored by requireIdentity.
func currentUser(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
