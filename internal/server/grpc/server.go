// Package grpc hosts the public gRPC endpoint: the AuthService handlers, the
// bearer-token interceptor guarding protected methods and the standard health
// service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Authenticator is the auth facade used by the handlers and the interceptor.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, bearer string) (*auth.Identity, error)
}

// Accounts is the account service used by the handlers.
type Accounts interface {
	Register(ctx context.Context, username, email, password string) (*services.Profile, error)
	Me(ctx context.Context, id uuid.UUID) (*services.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*services.Profile, error)
	RequestAvatarUpload(ctx context.Context, id uuid.UUID) (string, string, error)
}

type GRPCServer struct {
	address      string
	auth         Authenticator
	accounts     Accounts
	logger       logging.Logger
	interceptors []grpc.UnaryServerInterceptor
}

// NewGRPCServer wires the handlers. Extra interceptors run before the
// authentication check, in the given order.
func NewGRPCServer(address string, l logging.Logger, a Authenticator, acc Accounts, interceptors ...grpc.UnaryServerInterceptor) *GRPCServer {
	return &GRPCServer{
		address:      address,
		auth:         a,
		accounts:     acc,
		logger:       l.With("module", "grpc_server"),
		interceptors: interceptors,
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	chain := append(append([]grpc.UnaryServerInterceptor{}, s.interceptors...), s.accessTokenInterceptor)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))

	rpc.RegisterAuthServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
