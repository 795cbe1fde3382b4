package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
)

// SessionToken is a staff session credential. Expiry is fixed at issue time;
// activity does not extend it.
type SessionToken struct {
	Token     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenStore manages staff session tokens in memory. Tokens do not survive a
// restart; staff log in again.
type TokenStore struct {
	tokens map[string]*SessionToken
	mu     sync.RWMutex
	ttl    time.Duration
}

func NewTokenStore(ttl time.Duration) *TokenStore {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &TokenStore{
		tokens: make(map[string]*SessionToken),
		ttl:    ttl,
	}
}

// Create issues a new token for a username.
func (s *TokenStore) Create(username string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	st := &SessionToken{
		Token:     token,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.tokens[token] = st
	s.mu.Unlock()

	return token, nil
}

// Validate checks that a token exists and has not passed its fixed expiry.
func (s *TokenStore) Validate(token string) (string, error) {
	s.mu.RLock()
	st, exists := s.tokens[token]
	s.mu.RUnlock()

	if !exists {
		return "", ErrTokenNotFound
	}

	if time.Now().After(st.ExpiresAt) {
		s.Invalidate(token)
		return "", ErrTokenExpired
	}

	return st.Username, nil
}

// Invalidate removes a token from the store.
func (s *TokenStore) Invalidate(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// CleanupExpired removes all expired tokens from the store.
func (s *TokenStore) CleanupExpired() int {
	now := time.Now()
	count := 0

	s.mu.Lock()
	for token, st := range s.tokens {
		if now.After(st.ExpiresAt) {
			delete(s.tokens, token)
			count++
		}
	}
	s.mu.Unlock()

	return count
}

// Count returns the number of active tokens.
func (s *TokenStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// StartCleanup runs periodic expired-token cleanup until the context ends.
func (s *TokenStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
