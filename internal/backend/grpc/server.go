// Package grpc exposes the backend services over gRPC using the JSON
// service descriptor from package wire.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/socialclone/internal/backend/metrics"
	"github.com/dmitrijs2005/socialclone/internal/backend/storage"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/dmitrijs2005/socialclone/internal/wire"
	"google.golang.org/grpc"
)

type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.Identity, string, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	GetSession(ctx context.Context, userID string) (*models.Session, error)
}

type RecordStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	ListPosts(ctx context.Context, userID string) ([]*models.Post, error)
	InsertProfile(ctx context.Context, callerID string, profile *models.Profile) error
	UpdateProfile(ctx context.Context, callerID, id string, update models.ProfileUpdate) (*models.Profile, error)
	CreatePost(ctx context.Context, callerID string, imageURL, caption *string) (*models.Post, error)
}

type ObjectStorage interface {
	PresignUpload(ctx context.Context, callerID, bucket, key, contentType string) (*storage.PresignedRequest, error)
	PublicURL(bucket, key string) (string, error)
}

type GRPCServer struct {
	address   string
	identity  IdentityProvider
	records   RecordStore
	storage   ObjectStorage
	metrics   metrics.Recorder
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, is IdentityProvider, rs RecordStore, ss ObjectStorage, m metrics.Recorder, secretKey string) *GRPCServer {
	if m == nil {
		m = metrics.Nop{}
	}
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		identity:  is,
		records:   rs,
		storage:   ss,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with interceptors and the backend service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	wire.RegisterBackendServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
