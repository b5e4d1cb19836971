package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenValidity is the lifetime of an issued token.
const DefaultTokenValidity = 24 * time.Hour

// Claims is what a valid token asserts.
type Claims struct {
	Subject   uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates HS256-signed JWTs carrying
// {sub, iat, exp}. Tokens are stateless: nothing is stored server side.
type TokenService struct {
	secrets  *Secrets
	runner   *Runner
	validity time.Duration
	now      func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithValidity overrides DefaultTokenValidity. Non-positive values are ignored.
func WithValidity(d time.Duration) TokenOption {
	return func(s *TokenService) {
		if d > 0 {
			s.validity = d
		}
	}
}

func NewTokenService(secrets *Secrets, runner *Runner, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secrets:  secrets,
		runner:   runner,
		validity: DefaultTokenValidity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for subject, valid from now until now+validity.
func (s *TokenService) Issue(ctx context.Context, subject uuid.UUID) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
	})

	return run(ctx, s.runner, func() (string, error) {
		signed, err := token.SignedString(s.secrets.SigningKey)
		if err != nil {
			return "", fmt.Errorf("sign token: %w", err)
		}
		return signed, nil
	})
}

// Validate checks signature, algorithm and expiry and returns the claims.
// Every rejection wraps common.ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, token string) (*Claims, error) {
	now := s.now()

	return run(ctx, s.runner, func() (*Claims, error) {
		rc := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(token, rc,
			func(*jwt.Token) (any, error) { return s.secrets.SigningKey, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(func() time.Time { return now }),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
		}

		sub, err := uuid.Parse(rc.Subject)
		if err != nil {
			return nil, fmt.Errorf("%w: subject: %w", common.ErrInvalidToken, err)
		}

		c := &Claims{Subject: sub, ExpiresAt: rc.ExpiresAt.Time}
		if rc.IssuedAt != nil {
			c.IssuedAt = rc.IssuedAt.Time
		}
		return c, nil
	})
}
