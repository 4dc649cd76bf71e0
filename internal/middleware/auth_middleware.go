package middleware

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/homemeal/homemeal-backend/internal/errors"
	"github.com/homemeal/homemeal-backend/internal/session"
	"github.com/homemeal/homemeal-backend/pkg/logger"
)

type AuthMiddleware struct {
	registry session.Registry
}

func NewAuthMiddleware(registry session.Registry) *AuthMiddleware {
	return &AuthMiddleware{
		registry: registry,
	}
}

// Authenticate resolves a session token, accepting either the bare token or "Bearer <token>".
// A successful call slides the session's expiry window.
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	token = extractToken(token)
	if token == "" {
		logger.Warn("Missing session token", nil)
		return nil, apperrors.SessionInvalid()
	}

	sess, err := m.registry.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			logger.Debug("Session validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			return nil, apperrors.SessionInvalid()
		}
		logger.Error("Session registry unavailable", err)
		return nil, apperrors.Storage(err)
	}

	logger.Debug("User authenticated successfully", map[string]interface{}{
		"user_id": sess.UserID,
	})
	return sess, nil
}

func extractToken(raw string) string {
	raw = strings.TrimSpace(raw)
	parts := strings.Fields(raw)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	if len(parts) != 1 {
		return ""
	}
	return raw
}
