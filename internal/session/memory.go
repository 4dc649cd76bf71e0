package session

import (
	"context"
	"sync"
	"time"

	"github.com/homemeal/homemeal-backend/pkg/logger"
	"github.com/homemeal/homemeal-backend/pkg/util"
)

type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
	now      Clock
}

func NewMemoryRegistry(timeout time.Duration, clock Clock) *MemoryRegistry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if clock == nil {
		clock = time.Now
	}
	return &MemoryRegistry{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      clock,
	}
}

func (r *MemoryRegistry) Create(_ context.Context, userID uint, data UserData) (string, error) {
	token, err := util.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := r.now()
	r.mu.Lock()
	r.sessions[token] = &Session{
		Token:        token,
		UserID:       userID,
		UserData:     data,
		CreatedAt:    now,
		LastActivity: now,
	}
	r.mu.Unlock()

	logger.Debug("Session created", map[string]interface{}{
		"user_id": userID,
	})
	return token, nil
}

func (r *MemoryRegistry) Validate(_ context.Context, token string) (*Session, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, ErrInvalidSession
	}
	if s.expired(now, r.timeout) {
		delete(r.sessions, token)
		logger.Debug("Session expired on validate", map[string]interface{}{
			"user_id": s.UserID,
		})
		return nil, ErrInvalidSession
	}

	s.LastActivity = now
	copied := *s
	return &copied, nil
}

func (r *MemoryRegistry) Revoke(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[token]; !ok {
		return false, nil
	}
	delete(r.sessions, token)
	return true, nil
}

func (r *MemoryRegistry) Sweep(_ context.Context) (int, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, s := range r.sessions {
		if s.expired(now, r.timeout) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed, nil
}

func (r *MemoryRegistry) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions), nil
}
