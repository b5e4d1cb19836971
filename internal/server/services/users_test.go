package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ auth.UserLookup = (*UserDirectory)(nil)

func TestUserDirectory(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := newFakeUsersRepo()
	rm := &fakeRepoMgr{users: repo}
	dir := NewUserDirectory(db, rm)
	ctx := context.Background()

	u, err := repo.Create(ctx, &models.User{UserName: "alice"})
	require.NoError(t, err)

	got, err := dir.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = dir.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)

	_, err = dir.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrorNotFound)

	for _, h := range rm.handles {
		assert.Same(t, db, h)
	}
}
