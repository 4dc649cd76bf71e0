package session

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidSession covers unknown, revoked and expired tokens alike.
var ErrInvalidSession = errors.New("session is invalid or expired")

const DefaultTimeout = time.Hour

// UserData is the profile snapshot captured at login.
type UserData map[string]interface{}

type Session struct {
	Token        string    `json:"token"`
	UserID       uint      `json:"user_id"`
	UserData     UserData  `json:"user_data"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

func (s *Session) expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// Registry issues opaque tokens and expires them after a period of inactivity.
// Implementations are safe for concurrent use.
type Registry interface {
	Create(ctx context.Context, userID uint, data UserData) (string, error)
	// Validate returns the session and slides its expiry window forward.
	Validate(ctx context.Context, token string) (*Session, error)
	Revoke(ctx context.Context, token string) (bool, error)
	Sweep(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// Clock lets tests control time.
type Clock func() time.Time
