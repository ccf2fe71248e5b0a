package usage

import (
	"context"
	"errors"
)

// TokenStore is the persistence surface the service needs. Implementations
// may wrap ErrInsufficientTokens; the service matches it with errors.Is.
type TokenStore interface {
	UseToken(ctx context.Context, uid string) error
	EnsureUser(ctx context.Context, uid string) error
}

// Service meters AI request usage.
type Service struct {
	store TokenStore
}

// NewService creates a Service backed by the given store.
func NewService(store TokenStore) *Service {
	return &Service{store: store}
}

// UseToken spends one request token from uid's monthly allowance. A uid seen
// for the first time has no row, which the store reports as exhaustion; the
// service then creates the row and retries the deduction once. Exhaustion on
// the retry is the real thing and comes back as ErrInsufficientTokens.
func (s *Service) UseToken(ctx context.Context, uid string) error {
	err := s.store.UseToken(ctx, uid)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	if initErr := s.store.EnsureUser(ctx, uid); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid)
}
