package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"spotcircle/internal/domain"
)

const (
	ctxUserID = "userID"
	ctxRole   = "userRole"
)

// requireAuth rejects requests without a valid bearer token and stores the
// caller's identity and role in the request context.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := h.parseToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// optionalAuth picks up caller identity when a token is present but lets
// anonymous requests through.
func (h *Handler) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, role, err := h.parseToken(c); err == nil {
			c.Set(ctxUserID, userID)
			c.Set(ctxRole, role)
		}
		c.Next()
	}
}

func (h *Handler) requireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := callerRole(c)
		if roleRank(role) < roleRank(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

func (h *Handler) parseToken(c *gin.Context) (string, domain.Role, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", "", fmt.Errorf("missing bearer token")
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", "", fmt.Errorf("invalid token subject")
	}
	role, _ := claims["role"].(string)
	return sub, domain.Role(role), nil
}

func callerID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func callerRole(c *gin.Context) domain.Role {
	if v, ok := c.Get(ctxRole); ok {
		if role, ok := v.(domain.Role); ok {
			return role
		}
	}
	return ""
}

func roleRank(role domain.Role) int {
	switch role {
	case domain.RoleSuperAdmin:
		return 3
	case domain.RoleAdmin:
		return 2
	case domain.RoleUser:
		return 1
	}
	return 0
}
