package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jask/spotifydaily/internal/secrets"
)

const secretName = "spotify"

// TokenStore persists tokens. *secrets.Store satisfies it.
type TokenStore interface {
	Save(name string, v any) error
	Load(name string, dest any) error
}

// SaveToken stores tok as the current login.
func SaveToken(store TokenStore, tok Token) error {
	return store.Save(secretName, tok)
}

// Source hands out the stored access token, refreshing it when it is about
// to expire.
type Source struct {
	cfg    Config
	store  TokenStore
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	tok *Token
}

// NewSource returns a token source over store.
func NewSource(cfg Config, store TokenStore, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{cfg: cfg, store: store, logger: logger, now: time.Now}
}

// Token returns a valid access token or ErrNoToken.
func (s *Source) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok == nil {
		var tok Token
		if err := s.store.Load(secretName, &tok); err != nil {
			if errors.Is(err, secrets.ErrNotFound) {
				return "", ErrNoToken
			}
			return "", fmt.Errorf("load token: %w", err)
		}
		s.tok = &tok
	}

	if s.tok.Expired(s.now(), 30*time.Second) {
		if s.tok.RefreshToken == "" {
			return "", ErrNoToken
		}
		fresh, err := s.cfg.Refresh(ctx, s.tok.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("refresh token: %w", err)
		}
		if err := SaveToken(s.store, fresh); err != nil {
			s.logger.Warn("persist refreshed token", "error", err)
		}
		s.logger.Debug("access token refreshed", "expiry", fresh.Expiry)
		s.tok = &fresh
	}
	return s.tok.AccessToken, nil
}
