package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pinboard-api/helper"
	"pinboard-api/models"
)

const identityKey = "identity"

var ErrMissingAuthHeader = errors.New("authorization header required")

// TokenVerifier resolves a bearer token into the caller's identity.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*models.Identity, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the caller's identity in the context.
func AuthMiddleware(verifier TokenVerifier, h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			h.SendUnauthorizedError(c, err.Error())
			c.Abort()
			return
		}

		identity, err := verifier.VerifyToken(tokenString)
		if err != nil {
			h.Log.WithError(err).WithField("path", c.FullPath()).Warn("Auth middleware: rejected token")
			status := h.GetStatusCode(err)
			if errors.Is(err, models.ErrExpiredToken) {
				h.SendErrorMessage(c, status, models.ErrExpiredToken.Error())
			} else {
				h.SendErrorMessage(c, status, models.ErrInvalidToken.Error())
			}
			c.Abort()
			return
		}

		c.Set(identityKey, *identity)
		h.Log.WithFields(logrus.Fields{"username": identity.Username}).Debug("Auth middleware: user authenticated")
		c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("bearer token required")
	}
	return strings.TrimSpace(parts[1]), nil
}
