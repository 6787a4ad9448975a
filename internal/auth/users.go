package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"signal-desk/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrDuplicateAccount = errors.New("account already exists")

// UserStore is an in-memory account directory keyed by lower-cased email.
type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
	byID    map[string]domain.User
	cost    int
}

func NewUserStore() *UserStore {
	return &UserStore{
		byEmail: make(map[string]domain.User),
		byID:    make(map[string]domain.User),
		cost:    bcrypt.DefaultCost,
	}
}

// Add hashes password and registers the account. An email that is already registered
// returns ErrDuplicateAccount and leaves the existing account untouched.
func (s *UserStore) Add(email, password string, role domain.Role) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	if password == "" {
		return domain.User{}, &domain.ValidationError{Field: "password", Reason: "is required"}
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return domain.User{}, &domain.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return domain.User{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, email)
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byEmail[email] = u
	s.byID[u.ID] = u
	return u, nil
}

// Verify returns the account matching email and password, or ErrAuthentication.
func (s *UserStore) Verify(email, password string) (domain.User, error) {
	s.mu.RLock()
	u, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return domain.User{}, domain.ErrAuthentication
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return domain.User{}, domain.ErrAuthentication
	}
	return u, nil
}

func (s *UserStore) Get(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	return u, ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
