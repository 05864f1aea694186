// Package grpc exposes the identity and profile store over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/noxus/internal/api"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/dmitrijs2005/noxus/internal/server/services"
	"google.golang.org/grpc"
)

type UserService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SignOut(ctx context.Context, refreshToken string) error
	ResetPassword(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, userID, password string) error
}

type ProfileService interface {
	Get(ctx context.Context, callerID, id string) (*models.Profile, error)
	Insert(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, error)
	Upsert(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, error)
}

type AvatarService interface {
	PresignUpload(ctx context.Context, userID, ext string) (string, string, error)
	SetAvatar(ctx context.Context, userID, key string) (*models.Profile, error)
}

type OAuthService interface {
	AuthURL(ctx context.Context, provider, redirectTo string) (string, error)
}

type GRPCServer struct {
	api.UnimplementedIdentityServiceServer
	address   string
	users     UserService
	profiles  ProfileService
	avatars   AvatarService
	oauth     OAuthService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ps ProfileService, as AvatarService, oa OAuthService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		profiles:  ps,
		avatars:   as,
		oauth:     oa,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with interceptors and the service
// registered, without listening.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterIdentityServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
