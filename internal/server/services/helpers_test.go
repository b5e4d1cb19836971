package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/google/uuid"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	created    *models.User
	createErr  error
	byID       map[uuid.UUID]*models.User
	findErr    error
	updateErr  error
	setKeyErr  error
	lastUpdate models.ProfileUpdate
	lastKey    string
	updateDB   dbx.DBTX
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[uuid.UUID]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = uuid.New()
	f.created = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) FindByUsername(_ context.Context, name string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.byID {
		if u.UserName == name {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	f.lastUpdate = upd
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.FullName != nil {
		u.FullName = upd.FullName
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	return u, nil
}

func (f *fakeUsersRepo) SetAvatarKey(_ context.Context, id uuid.UUID, key string) error {
	f.lastKey = key
	if f.setKeyErr != nil {
		return f.setKeyErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.AvatarKey = &key
	return nil
}

// fakeRepoMgr hands out the same fake repository for any handle and records
// the handles it was asked for.
type fakeRepoMgr struct {
	users   *fakeUsersRepo
	handles []dbx.DBTX
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoMgr) Users(db dbx.DBTX) users.Repository {
	m.handles = append(m.handles, db)
	return m.users
}

type fakePasswords struct {
	err error
}

func (f fakePasswords) HashNewPassword(_ context.Context, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(password) < 5 {
		return "", common.ErrInvalidInput
	}
	return "$argon2id$fake$" + password, nil
}

type fakeAvatars struct {
	putErr, getErr error
	putKeys        []string
}

func (f *fakeAvatars) PresignPut(_ context.Context, key string) (string, error) {
	f.putKeys = append(f.putKeys, key)
	if f.putErr != nil {
		return "", f.putErr
	}
	return "https://s3.local/put/" + key, nil
}

func (f *fakeAvatars) PresignGet(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return "https://s3.local/get/" + key, nil
}

var errBoom = errors.New("boom")
