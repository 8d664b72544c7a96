package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/garrettladley/pulse/internal/repository"
)

const tokenLoadTimeout = 5 * time.Second

type TokenChecker interface {
	HasToken(ctx context.Context) (bool, error)
}

var (
	_ TokenChecker       = (*DBTokenSource)(nil)
	_ oauth2.TokenSource = (*DBTokenSource)(nil)
)

// DBTokenSource serves the stored token, refreshing and re-storing it once
// it expires.
type DBTokenSource struct {
	config *oauth2.Config
	tokens repository.TokenRepository
	mu     sync.Mutex
	token  *oauth2.Token
}

func NewDBTokenSource(config *oauth2.Config, tokens repository.TokenRepository) *DBTokenSource {
	return &DBTokenSource{
		config: config,
		tokens: tokens,
	}
}

func (s *DBTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.Valid() {
		return s.token, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), tokenLoadTimeout)
	defer cancel()

	token, err := s.tokens.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	if token.Valid() {
		s.token = token
		return token, nil
	}

	if token.RefreshToken == "" {
		return nil, ErrTokenExpired
	}

	refreshed, err := s.config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := s.tokens.Upsert(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}

	s.token = refreshed
	return refreshed, nil
}

// Forget drops the in-memory token so the next call re-reads the store.
func (s *DBTokenSource) Forget() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

func (s *DBTokenSource) HasToken(ctx context.Context) (bool, error) {
	_, err := s.tokens.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
