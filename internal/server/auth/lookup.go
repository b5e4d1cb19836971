package auth

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// UserLookup is the storage collaborator of the core. A missing user is
// reported as common.ErrorNotFound.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
