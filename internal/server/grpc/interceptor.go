package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// protectedMethods require a valid bearer token.
var protectedMethods = map[string]struct{}{
	rpc.MethodMe:                  {},
	rpc.MethodUpdateProfile:       {},
	rpc.MethodRequestAvatarUpload: {},
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := protectedMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	token, _ := auth.BearerFromHeaders(md)

	id, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, s.toStatus(ctx, info.FullMethod, err)
	}

	return handler(auth.WithIdentity(ctx, id), req)
}
