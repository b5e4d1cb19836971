package auth

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// TokenValidator is the part of TokenService the authenticator needs.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*Claims, error)
}

// RequestAuthenticator turns a bearer token into an Identity. It confirms the
// token's subject still exists, so a deleted account with an unexpired token
// is rejected.
type RequestAuthenticator struct {
	tokens TokenValidator
	users  UserLookup
	log    logging.Logger
}

func NewRequestAuthenticator(tokens TokenValidator, users UserLookup, log logging.Logger) *RequestAuthenticator {
	return &RequestAuthenticator{tokens: tokens, users: users, log: log.With("module", "authenticator")}
}

// Authenticate returns the caller's identity or one of ErrInvalidToken,
// ErrNotAuthorized, ErrorInternal.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, bearer string) (*Identity, error) {
	if bearer == "" {
		return nil, common.ErrInvalidToken
	}

	claims, err := a.tokens.Validate(ctx, bearer)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.log.Debug(ctx, "token rejected", "error", err)
		return nil, common.ErrInvalidToken
	}

	user, err := a.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			a.log.Debug(ctx, "token subject not found", "user_id", claims.Subject)
			return nil, common.ErrNotAuthorized
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.log.Error(ctx, "user lookup failed", "user_id", claims.Subject, "error", err)
		return nil, common.ErrorInternal
	}

	return &Identity{UserID: user.ID, UserName: user.UserName}, nil
}
