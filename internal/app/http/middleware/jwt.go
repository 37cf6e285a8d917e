package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"retail-saas/internal/domain/identity"

	"github.com/gin-gonic/gin"
)

// Request metadata headers carried by every authenticated client call.
const (
	HeaderUserID      = "X-User-Id"
	HeaderAccountType = "X-Account-Type"
	HeaderTenantID    = "X-Tenant-Id"
)

const identityKey = "identity"

// AuthMiddleware resolves the caller identity from the bearer token. Metadata
// headers are optional, but when present they must agree with the token.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		jwtKey := []byte(secret)
		if len(jwtKey) == 0 {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		id, err := identity.Parse(jwtKey, strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if !metadataMatches(c, id) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Identity headers do not match token"})
			return
		}

		c.Set(identityKey, id)
		c.Set("user_id", id.UserID)
		c.Set("email", id.Email)
		c.Next()
	}
}

func metadataMatches(c *gin.Context, id identity.Identity) bool {
	if v := c.GetHeader(HeaderUserID); v != "" && v != strconv.FormatUint(uint64(id.UserID), 10) {
		return false
	}
	if v := c.GetHeader(HeaderAccountType); v != "" && identity.AccountType(v) != id.Type {
		return false
	}
	if v := c.GetHeader(HeaderTenantID); v != "" && id.IsEmployee() && v != strconv.FormatUint(uint64(id.AccountID), 10) {
		return false
	}
	return true
}

// CurrentIdentity returns the identity AuthMiddleware stored.
func CurrentIdentity(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}
