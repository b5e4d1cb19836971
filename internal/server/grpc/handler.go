package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	p, err := s.accounts.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodRegister, err)
	}

	s.logger.Info(ctx, "Registered", "username", p.UserName)
	return &rpc.RegisterResponse{UserID: p.ID.String(), Username: p.UserName}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	token, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodLogin, err)
	}
	return &rpc.LoginResponse{AccessToken: token, TokenType: common.BearerScheme}, nil
}

func (s *GRPCServer) Me(ctx context.Context, req *rpc.MeRequest) (*rpc.ProfileResponse, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, rpc.MethodMe, common.ErrNotAuthorized)
	}

	p, err := s.accounts.Me(ctx, id.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodMe, err)
	}
	return toProfileResponse(p), nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *rpc.UpdateProfileRequest) (*rpc.ProfileResponse, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, rpc.MethodUpdateProfile, common.ErrNotAuthorized)
	}

	p, err := s.accounts.UpdateProfile(ctx, id.UserID, models.ProfileUpdate{FullName: req.FullName, Bio: req.Bio})
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodUpdateProfile, err)
	}
	return toProfileResponse(p), nil
}

func (s *GRPCServer) RequestAvatarUpload(ctx context.Context, req *rpc.AvatarUploadRequest) (*rpc.AvatarUploadResponse, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, s.toStatus(ctx, rpc.MethodRequestAvatarUpload, common.ErrNotAuthorized)
	}

	key, url, err := s.accounts.RequestAvatarUpload(ctx, id.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, rpc.MethodRequestAvatarUpload, err)
	}
	return &rpc.AvatarUploadResponse{Key: key, UploadURL: url}, nil
}

func toProfileResponse(p *services.Profile) *rpc.ProfileResponse {
	return &rpc.ProfileResponse{
		UserID:    p.ID.String(),
		Username:  p.UserName,
		Email:     p.Email,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
