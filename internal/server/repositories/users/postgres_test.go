package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "username", "email", "password_hash", "full_name", "bio", "avatar_key", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	mock.ExpectQuery(q).
		WithArgs("alice", "alice@example.com", "$argon2id$...").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

	got, err := repo.Create(context.Background(), &models.User{
		UserName: "alice", Email: "alice@example.com", PasswordHash: "$argon2id$...",
	})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, now, got.CreatedAt)
}

func TestCreate_UniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"users_username_key", "username"},
		{"users_email_key", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectQuery(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "a@b.c", PasswordHash: "h"})

			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.field, conflict.Field)
			assert.ErrorIs(t, err, common.ErrAlreadyExists)
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	assert.NotErrorIs(t, err, common.ErrAlreadyExists)
}

func TestFindByUsername_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	now := time.Now().UTC()
	q := `(?s)^SELECT\s+id,\s*username,\s*email,\s*password_hash,\s*full_name,\s*bio,\s*avatar_key,\s*created_at,\s*updated_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`

	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(id.String(), "alice", "alice@example.com", "hash", "Alice A.", nil, nil, now, now))

	got, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	require.NotNil(t, got.FullName)
	assert.Equal(t, "Alice A.", *got.FullName)
	assert.Nil(t, got.Bio)
	assert.Nil(t, got.AvatarKey)
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		now := time.Now().UTC()
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(id.String(), "bob", "bob@example.com", "hash", nil, "hi", "avatars/k", now, now))

		got, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.UserName)
		require.NotNil(t, got.AvatarKey)
		assert.Equal(t, "avatars/k", *got.AvatarKey)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), id)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnError(errors.New("conn reset"))

		_, err := repo.FindByID(context.Background(), id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
		assert.Contains(t, err.Error(), "conn reset")
	})
}

func TestUpdateProfile(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	now := time.Now().UTC()
	bio := "gopher"

	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+full_name\s*=\s*COALESCE\(\$2,\s*full_name\),\s*bio\s*=\s*COALESCE\(\$3,\s*bio\).*RETURNING`).
		WithArgs(id.String(), nil, bio).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(id.String(), "alice", "alice@example.com", "hash", nil, bio, nil, now, now))

	got, err := repo.UpdateProfile(context.Background(), id, models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, got.Bio)
	assert.Equal(t, bio, *got.Bio)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateProfile(context.Background(), uuid.New(), models.ProfileUpdate{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetAvatarKey(t *testing.T) {
	id := uuid.New()
	q := `UPDATE users SET avatar_key = \$2, updated_at = now\(\) WHERE id = \$1`

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs(id.String(), "avatars/x").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.SetAvatarKey(context.Background(), id, "avatars/x"))
	})

	t.Run("no rows", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WithArgs(id.String(), "avatars/x").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.SetAvatarKey(context.Background(), id, "avatars/x"), common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(errors.New("boom"))
		err := repo.SetAvatarKey(context.Background(), id, "avatars/x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db error")
	})
}
