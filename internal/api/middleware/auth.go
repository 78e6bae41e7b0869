package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxton76/stall-bokning-sub008/pkg/jwt"
	"github.com/maxton76/stall-bokning-sub008/pkg/redis"
	"github.com/maxton76/stall-bokning-sub008/pkg/response"
)

// JWTAuth extracts and verifies the access token from
// Authorization: Bearer <token>. rdb may be nil; the blacklist check is
// then skipped and revoked tokens simply age out.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "wrong token type")
			c.Abort()
			return
		}

		if rdb != nil {
			// blacklist errors fail open, same policy as the rate limiter
			if blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && blacklisted {
				response.Unauthorized(c, 10002, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("stable_id", claims.StableID)
		// logout needs these to blacklist the token
		c.Set("jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_expires_at", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleAuth requires the authenticated user to hold one of the given roles.
func RoleAuth(rdb *redis.Client, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}

		userRole := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		// a 403 may mean the cached toggle/permission state is stale;
		// drop it so the next read goes to the database
		if rdb != nil {
			if stableID := c.GetString("stable_id"); stableID != "" {
				rdb.InvalidateToggles(c.Request.Context(), stableID)
			}
		}

		response.Forbidden(c, 10003, "insufficient permissions")
		c.Abort()
	}
}

// StableScope requires the token to be scoped to a stable. Endpoints under
// /stables/current operate on this scope.
func StableScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		stableID, exists := c.Get("stable_id")
		if !exists || stableID.(string) == "" {
			response.Forbidden(c, 10003, "token is not scoped to a stable")
			c.Abort()
			return
		}
		c.Next()
	}
}
