package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned by a SessionStore for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps opaque tokens to user ids for a bounded lifetime.
type SessionStore interface {
	Create(ctx context.Context, token, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionStore{sessions: make(map[string]memorySession), now: now}
}

func (s *MemorySessionStore) Create(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return "", ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// PurgeExpired drops every expired session and reports how many were removed.
func (s *MemorySessionStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

const sessionKeyPrefix = "signaldesk:session:"

// RedisSessionStore keeps sessions in redis; expiry is delegated to key TTLs.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return userID, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
