package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest password HashNewPassword accepts.
const MinPasswordLength = 5

// Tokens issues and validates bearer tokens.
type Tokens interface {
	TokenValidator
	Issue(ctx context.Context, subject uuid.UUID) (string, error)
}

// Observer receives the outcome of each login and authentication decision.
// Outcome values are short labels such as "ok", "invalid_credentials",
// "invalid_token", "not_authorized", "error" and "canceled".
type Observer interface {
	ObserveLogin(outcome string)
	ObserveAuthenticate(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveLogin(string)        {}
func (nopObserver) ObserveAuthenticate(string) {}

// Service is the facade handlers talk to.
type Service struct {
	verifier      *CredentialVerifier
	authenticator *RequestAuthenticator
	tokens        Tokens
	hasher        PasswordHasher
	observer      Observer
	log           logging.Logger
}

type ServiceOption func(*Service)

// WithObserver reports decision outcomes to o.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewService(users UserLookup, hasher PasswordHasher, tokens Tokens, log logging.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		verifier:      NewCredentialVerifier(users, hasher, log),
		authenticator: NewRequestAuthenticator(tokens, users, log),
		tokens:        tokens,
		hasher:        hasher,
		observer:      nopObserver{},
		log:           log.With("module", "auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the credentials and issues a token for the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	id, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		s.observer.ObserveLogin(outcome(err))
		return "", err
	}

	token, err := s.tokens.Issue(ctx, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.observer.ObserveLogin(outcome(ctxErr))
			return "", ctxErr
		}
		s.log.Error(ctx, "token issue failed", "user_id", id, "error", err)
		s.observer.ObserveLogin(outcome(common.ErrorInternal))
		return "", common.ErrorInternal
	}

	s.log.Info(ctx, "user logged in", "user_id", id)
	s.observer.ObserveLogin(outcome(nil))
	return token, nil
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *Service) Authenticate(ctx context.Context, bearer string) (*Identity, error) {
	id, err := s.authenticator.Authenticate(ctx, bearer)
	s.observer.ObserveAuthenticate(outcome(err))
	return id, err
}

// HashNewPassword hashes a password chosen at registration time.
func (s *Service) HashNewPassword(ctx context.Context, password string) (string, error) {
	if len([]rune(password)) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, MinPasswordLength)
	}

	h, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return "", common.ErrHashing
	}
	return h, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, common.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
