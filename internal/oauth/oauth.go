// Package oauth implements Google sign-in for accounts that already exist.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
)

type UserInfo struct {
	Email         string
	VerifiedEmail bool
	Name          string
	ID            string
}

type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

type pending struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// Store holds short-lived single-use values: consent states and the login
// codes handed to the frontend after a successful callback.
type Store struct {
	entries sync.Map
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Issue creates a random key bound to userID (uuid.Nil for consent states).
func (s *Store) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	key, err := GenerateState()
	if err != nil {
		return "", err
	}
	s.entries.Store(key, pending{userID: userID, expiresAt: s.now().Add(ttl)})
	return key, nil
}

// Consume removes key and returns its user if it had not expired.
func (s *Store) Consume(key string) (uuid.UUID, bool) {
	v, ok := s.entries.LoadAndDelete(key)
	if !ok {
		return uuid.Nil, false
	}
	p := v.(pending)
	if s.now().After(p.expiresAt) {
		return uuid.Nil, false
	}
	return p.userID, true
}

// Purge drops expired keys. It has the shape of a maintenance job.
func (s *Store) Purge(_ context.Context) (int64, error) {
	now := s.now()
	var n int64
	s.entries.Range(func(key, value any) bool {
		if now.After(value.(pending).expiresAt) {
			s.entries.Delete(key)
			n++
		}
		return true
	})
	return n, nil
}
