// Package session implements the server-side session store: an opaque token
// delivered in an HttpOnly cookie, with the session document held in Redis.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Data is the per-caller session state established at login.
type Data struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Type     string    `json:"type"` // raw role string as stored
	Role     string    `json:"role"` // normalized role
}

// Store persists sessions in Redis keyed by opaque tokens.
type Store struct {
	rdb        *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewStore creates a session store.
func NewStore(rdb *redis.Client, cookieName string, ttl time.Duration, secure bool) *Store {
	return &Store{rdb: rdb, cookieName: cookieName, ttl: ttl, secure: secure}
}

// CookieName returns the session cookie name.
func (s *Store) CookieName() string { return s.cookieName }

// Create stores the session data under a fresh token and returns the token.
func (s *Store) Create(ctx context.Context, data Data) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	token := uuid.New().String()
	if err := s.rdb.Set(ctx, keyPrefix+token, raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get returns the session for a token, or nil when the token is unknown or expired.
func (s *Store) Get(ctx context.Context, token string) (*Data, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

// Delete removes a session token.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SetCookie attaches the session cookie to the response.
func (s *Store) SetCookie(c *gin.Context, token string) {
	c.SetCookie(s.cookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
}

// ClearCookie expires the session cookie.
func (s *Store) ClearCookie(c *gin.Context) {
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}
