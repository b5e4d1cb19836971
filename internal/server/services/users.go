package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UserDirectory serves the read-only user lookups the auth core needs,
// straight from the pooled database handle.
type UserDirectory struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserDirectory(db *sql.DB, m repomanager.RepositoryManager) *UserDirectory {
	return &UserDirectory{db: db, repomanager: m}
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return d.repomanager.Users(d.db).FindByUsername(ctx, username)
}

func (d *UserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return d.repomanager.Users(d.db).FindByID(ctx, id)
}
