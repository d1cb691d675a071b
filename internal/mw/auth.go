package mw

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"elevator-maintenance-backend/internal/auth"
	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/store"
)

// callerKey is the gin context key the authenticated caller is stored under.
const callerKey = "mw.caller"

// Authenticate validates the bearer token and loads the caller. The user is
// re-read from the database so tokens of since-deleted accounts stop working.
func Authenticate(authSvc *auth.Service, s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := authSvc.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided, please log in"})
			return
		}

		claims, err := authSvc.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired, please log in again"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		user, err := s.UserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}

		c.Set(callerKey, store.Caller{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	}
}

// CallerFrom returns the authenticated caller set by Authenticate.
func CallerFrom(c *gin.Context) (store.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return store.Caller{}, false
	}
	caller, ok := v.(store.Caller)
	return caller, ok
}

// SetCaller injects a caller directly, for handler tests that bypass
// Authenticate.
func SetCaller(c *gin.Context, caller store.Caller) {
	c.Set(callerKey, caller)
}
