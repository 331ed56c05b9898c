// Package auth verifies who a connection belongs to. The coordinator core
// never sees credentials or tokens, only the identity string produced here.
package auth

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store is an in-memory credential store. State is process-local; a
// restart drops all accounts along with all presence.
type Store struct {
	mu    sync.RWMutex
	users map[domain.Identity][]byte // bcrypt hash
}

func NewStore() *Store {
	return &Store{users: make(map[domain.Identity][]byte)}
}

func (s *Store) Register(username, password string) (domain.Identity, error) {
	identity, err := domain.NewIdentity(username)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[identity]; ok {
		return "", ErrUserExists
	}
	s.users[identity] = hash
	log.Info().Str("module", "auth.store").Str("identity", string(identity)).Msg("registered user")
	return identity, nil
}

func (s *Store) Authenticate(username, password string) (domain.Identity, error) {
	identity, err := domain.NewIdentity(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	s.mu.RLock()
	hash, ok := s.users[identity]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return identity, nil
}
