package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/infrastructure/auth"
	"tillpoint/internal/shared/constants"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// TokenVerifier is satisfied by auth.JWTService.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	logger   logger.Interface
}

func NewAuthMiddleware(verifier TokenVerifier, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			denyUnauthenticated(c, "missing authorization token")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			denyUnauthenticated(c, "invalid authorization header format")
			return
		}

		claims, err := m.verifier.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			denyUnauthenticated(c, "invalid or expired token")
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID())
		c.Set(constants.ContextKeyUserEmail, claims.Email)
		c.Set(constants.ContextKeyActor, authorization.Actor{UserID: claims.UserID(), Email: claims.Email})

		c.Next()
	}
}

func denyUnauthenticated(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.APIResponse{
		Success: false,
		Error: &utils.ErrorInfo{
			Type:    string(authorization.DenyNotAuthenticated),
			Message: reason,
		},
	})
}

// ActorFrom returns the authenticated actor. ok is false before RequireAuth.
func ActorFrom(c *gin.Context) (authorization.Actor, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return authorization.Actor{}, false
	}
	actor, ok := v.(authorization.Actor)
	return actor, ok
}
