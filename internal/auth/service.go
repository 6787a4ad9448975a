package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signal-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const DefaultSessionTTL = 24 * time.Hour

// Service issues and resolves session tokens for the HTTP surface.
type Service struct {
	tracer   trace.Tracer
	users    *UserStore
	sessions SessionStore
	ttl      time.Duration
}

func NewService(tracer trace.Tracer, users *UserStore, sessions SessionStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{tracer: tracer, users: users, sessions: sessions, ttl: ttl}
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	ctx, span := s.tracer.Start(ctx, "auth.login")
	defer span.End()

	u, err := s.users.Verify(email, password)
	if err != nil {
		log.Info().Str("email", normalizeEmail(email)).Msg("login rejected")
		return domain.User{}, "", err
	}

	token := uuid.NewString()
	if err := s.sessions.Create(ctx, token, u.ID, s.ttl); err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	log.Debug().Str("user_id", u.ID).Msg("session opened")
	return u, token, nil
}

// Verify checks credentials without opening a session.
func (s *Service) Verify(ctx context.Context, email, password string) (domain.User, error) {
	_, span := s.tracer.Start(ctx, "auth.verify")
	defer span.End()

	u, err := s.users.Verify(email, password)
	if err != nil {
		log.Info().Str("email", normalizeEmail(email)).Msg("credential check rejected")
		return domain.User{}, err
	}
	return u, nil
}

// Logout revokes token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "auth.logout")
	defer span.End()

	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves token to its user, returning ErrAuthorization for missing,
// expired or revoked sessions.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "auth.authenticate")
	defer span.End()

	if token == "" {
		return domain.User{}, domain.ErrAuthorization
	}
	userID, err := s.sessions.Lookup(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return domain.User{}, domain.ErrAuthorization
	}
	if err != nil {
		return domain.User{}, err
	}
	u, ok := s.users.Get(userID)
	if !ok {
		return domain.User{}, domain.ErrAuthorization
	}
	return u, nil
}
