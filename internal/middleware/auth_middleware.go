package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionKey is the gin context key holding the *models.Session.
const SessionKey = "session"

type sessionCtxKey struct{}

// SessionVerifier confirms that the principal behind a valid token still exists.
// It returns services.ErrSessionRevoked when it does not; any other error is a lookup failure.
type SessionVerifier interface {
	VerifySession(ctx context.Context, session *models.Session) error
}

// WithSession returns a copy of ctx carrying the session.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

// SessionFromContext returns the session stored by AuthMiddleware.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(*models.Session)
	return session, ok && session != nil
}

// CurrentSession reads the session from the gin context.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok && session != nil
}

// RequestID tags every request with an id, reusing X-Request-ID when the client sends one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(utils.RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
// The decoded session is checked against the store before it is trusted.
func AuthMiddleware(tokens *utils.TokenManager, verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", ""))
			return
		}

		session := &models.Session{
			UserID:      claims.UserID,
			Username:    claims.Username,
			DisplayName: claims.DisplayName,
			Role:        claims.Role,
		}
		if claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}

		if verifier != nil {
			if err := verifier.VerifySession(c.Request.Context(), session); err != nil {
				if errors.Is(err, context.Canceled) {
					c.Abort()
					return
				}
				if errors.Is(err, services.ErrSessionRevoked) {
					utils.LogWarn("Session rejected", map[string]interface{}{"user_id": session.UserID, "role": session.Role})
					utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Session is no longer valid", ""))
					return
				}
				utils.LogError(err, "AuthMiddleware: Error verifying session")
				utils.RespondInternal(c, "Failed to verify session.")
				return
			}
		}

		c.Set(SessionKey, session)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// RoleAuthMiddleware creates a Gin middleware for role-based authorization.
// It must run after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", ""))
			return
		}

		for _, r := range allowedRoles {
			if session.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden,
			"You do not have permission to access this resource", "required roles: "+strings.Join(allowedRoles, ", ")))
	}
}
