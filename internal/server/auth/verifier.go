package auth

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/google/uuid"
)

// CredentialVerifier checks a username/password pair. An unknown user and a
// wrong password produce the same ErrInvalidCredentials.
type CredentialVerifier struct {
	users  UserLookup
	hasher PasswordHasher
	log    logging.Logger
}

func NewCredentialVerifier(users UserLookup, hasher PasswordHasher, log logging.Logger) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher, log: log.With("module", "credentials")}
}

// Verify returns the ID of the user owning the credentials.
//
// TODO: verify against a dummy hash when the user is unknown so both
// rejection paths take comparable time.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (uuid.UUID, error) {
	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			v.log.Debug(ctx, "login rejected", "username", username, "reason", "unknown user")
			return uuid.Nil, common.ErrInvalidCredentials
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return uuid.Nil, ctxErr
		}
		v.log.Error(ctx, "user lookup failed", "username", username, "error", err)
		return uuid.Nil, common.ErrorInternal
	}

	ok, err := v.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return uuid.Nil, ctxErr
		}
		v.log.Error(ctx, "password verification failed", "user_id", user.ID, "error", err)
		return uuid.Nil, common.ErrorInternal
	}
	if !ok {
		v.log.Debug(ctx, "login rejected", "username", username, "reason", "wrong password")
		return uuid.Nil, common.ErrInvalidCredentials
	}

	return user.ID, nil
}
