// Package services contains server-side business logic on top of the auth
// core: account registration, profile reads and updates, and avatar upload
// URLs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PasswordHashing is the part of the auth facade registration needs.
type PasswordHashing interface {
	HashNewPassword(ctx context.Context, password string) (string, error)
}

// Profile is the public view of a user. It never carries the password hash.
type Profile struct {
	ID        uuid.UUID
	UserName  string
	Email     string
	FullName  *string
	Bio       *string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type registerInput struct {
	UserName string `validate:"required,min=3,max=64"`
	Email    string `validate:"required,email,max=254"`
}

type profileInput struct {
	FullName *string `validate:"omitempty,max=128"`
	Bio      *string `validate:"omitempty,max=1024"`
}

// UserService implements account operations around the auth core.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passwords   PasswordHashing
	avatars     AvatarPresigner
	validate    *validator.Validate
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, passwords PasswordHashing, avatars AvatarPresigner, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		passwords:   passwords,
		avatars:     avatars,
		validate:    validator.New(),
		log:         log.With("module", "users"),
	}
}

// Register creates an account. Invalid input wraps common.ErrInvalidInput; a
// taken username or email is a *users.ConflictError.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*Profile, error) {
	in := registerInput{UserName: strings.TrimSpace(username), Email: strings.TrimSpace(email)}
	if err := s.validate.Struct(&in); err != nil {
		return nil, invalidInput(err)
	}

	hash, err := s.passwords.HashNewPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		s.log.Error(ctx, "create user failed", "username", in.UserName, "error", err)
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return toProfile(u), nil
}

// Me returns the profile of the given user, with a download URL for the
// avatar when one has been uploaded.
func (s *UserService) Me(ctx context.Context, id uuid.UUID) (*Profile, error) {
	u, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotAuthorized
		}
		s.log.Error(ctx, "load profile failed", "user_id", id, "error", err)
		return nil, common.ErrorInternal
	}
	return s.withAvatar(ctx, u), nil
}

// UpdateProfile changes the non-nil fields of upd.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*Profile, error) {
	if err := s.validate.Struct(&profileInput{FullName: upd.FullName, Bio: upd.Bio}); err != nil {
		return nil, invalidInput(err)
	}

	var u *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		u, err = s.repomanager.Users(tx).UpdateProfile(ctx, id, upd)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotAuthorized
		}
		s.log.Error(ctx, "update profile failed", "user_id", id, "error", err)
		return nil, common.ErrorInternal
	}

	return s.withAvatar(ctx, u), nil
}

// RequestAvatarUpload allocates a new avatar key for the user, records it and
// returns a presigned PUT URL for the client to upload the image to.
func (s *UserService) RequestAvatarUpload(ctx context.Context, id uuid.UUID) (string, string, error) {
	key := NewAvatarKey(id)

	url, err := s.avatars.PresignPut(ctx, key)
	if err != nil {
		s.log.Error(ctx, "presign avatar upload failed", "user_id", id, "error", err)
		return "", "", common.ErrorInternal
	}

	if err := s.repomanager.Users(s.db).SetAvatarKey(ctx, id, key); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrNotAuthorized
		}
		s.log.Error(ctx, "store avatar key failed", "user_id", id, "error", err)
		return "", "", common.ErrorInternal
	}

	return key, url, nil
}

func (s *UserService) withAvatar(ctx context.Context, u *models.User) *Profile {
	p := toProfile(u)
	if u.AvatarKey == nil || *u.AvatarKey == "" {
		return p
	}

	url, err := s.avatars.PresignGet(ctx, *u.AvatarKey)
	if err != nil {
		s.log.Warn(ctx, "presign avatar download failed", "user_id", u.ID, "error", err)
		return p
	}
	p.AvatarURL = url
	return p
}

func toProfile(u *models.User) *Profile {
	return &Profile{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		FullName:  u.FullName,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch name {
	case "fullname":
		name = "full_name"
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return name + " is invalid"
	}
}
