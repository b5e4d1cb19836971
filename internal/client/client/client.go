package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/rpc"
)

// Client is the API surface the CLI talks to.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, email string, password []byte) (*rpc.RegisterResponse, error)
	Login(ctx context.Context, username string, password []byte) error
	Logout()
	LoggedIn() bool
	Me(ctx context.Context) (*rpc.ProfileResponse, error)
	UpdateProfile(ctx context.Context, fullName, bio *string) (*rpc.ProfileResponse, error)
	RequestAvatarUpload(ctx context.Context) (*rpc.AvatarUploadResponse, error)
}
