package repository

import (
	"sync"
)

// deviceToken is a registered push target.
type deviceToken struct {
	Token     string
	Platform  string // "android" or "ios"
	CreatedAt int64
}

// TokenRepository manages device tokens for push notifications in memory.
type TokenRepository struct {
	tokens map[string]*deviceToken
	mu     sync.RWMutex
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		tokens: make(map[string]*deviceToken),
	}
}

// RegisterToken adds or updates a device token.
func (r *TokenRepository) RegisterToken(token, platform string, timestamp int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = &deviceToken{
		Token:     token,
		Platform:  platform,
		CreatedAt: timestamp,
	}
	return nil
}

// UnregisterToken removes a device token.
func (r *TokenRepository) UnregisterToken(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}

// GetAllTokens returns all registered tokens.
func (r *TokenRepository) GetAllTokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]string, 0, len(r.tokens))
	for token := range r.tokens {
		tokens = append(tokens, token)
	}
	return tokens
}

// GetTokenCount returns the number of registered tokens.
func (r *TokenRepository) GetTokenCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tokens)
}
