package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/dmitrijs2005/socialclone/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// toStatus maps service errors onto gRPC status codes. Unknown errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, common.ErrorValidation.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, common.ErrorForbidden.Error())
	}
	s.logger.Error(ctx, "request failed", "method", method, "err", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

func sessionResponse(session *models.Session) *wire.SessionResponse {
	return &wire.SessionResponse{
		UserID:       session.UserID,
		Email:        session.Email,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
	}
}

func (s *GRPCServer) caller(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *wire.SignUpRequest) (*wire.SignUpResponse, error) {
	s.logger.Info(ctx, "Registration request")

	identity, token, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "SignUp", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", identity.ID)
	return &wire.SignUpResponse{UserID: identity.ID, Email: identity.Email, SignupToken: token}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *wire.SignInRequest) (*wire.SessionResponse, error) {
	session, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "SignIn", err)
	}
	return sessionResponse(session), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *wire.RefreshTokenRequest) (*wire.SessionResponse, error) {
	session, err := s.identity.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "RefreshToken", err)
	}
	return sessionResponse(session), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *wire.SignOutRequest) (*emptypb.Empty, error) {
	if err := s.identity.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, "SignOut", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetSession(ctx context.Context, _ *emptypb.Empty) (*wire.SessionResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.identity.GetSession(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetSession", err)
	}
	return sessionResponse(session), nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *wire.GetProfileRequest) (*wire.ProfileResponse, error) {
	profile, err := s.records.GetProfile(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetProfile", err)
	}
	return &wire.ProfileResponse{Profile: profile}, nil
}

func (s *GRPCServer) ListPosts(ctx context.Context, req *wire.ListPostsRequest) (*wire.ListPostsResponse, error) {
	list, err := s.records.ListPosts(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, "ListPosts", err)
	}
	return &wire.ListPostsResponse{Posts: list}, nil
}

func (s *GRPCServer) InsertProfile(ctx context.Context, req *wire.InsertProfileRequest) (*emptypb.Empty, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.records.InsertProfile(ctx, userID, req.Profile); err != nil {
		return nil, s.toStatus(ctx, "InsertProfile", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *wire.UpdateProfileRequest) (*wire.ProfileResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.records.UpdateProfile(ctx, userID, req.ID, req.Update)
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateProfile", err)
	}
	return &wire.ProfileResponse{Profile: profile}, nil
}

func (s *GRPCServer) CreatePost(ctx context.Context, req *wire.CreatePostRequest) (*wire.PostResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.records.CreatePost(ctx, userID, req.ImageURL, req.Caption)
	if err != nil {
		return nil, s.toStatus(ctx, "CreatePost", err)
	}
	return &wire.PostResponse{Post: post}, nil
}

func (s *GRPCServer) PresignUpload(ctx context.Context, req *wire.PresignUploadRequest) (*wire.PresignUploadResponse, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	presigned, err := s.storage.PresignUpload(ctx, userID, req.Bucket, req.Key, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, "PresignUpload", err)
	}
	return &wire.PresignUploadResponse{URL: presigned.URL, Method: presigned.Method, Headers: presigned.Headers}, nil
}

func (s *GRPCServer) PublicURL(ctx context.Context, req *wire.PublicURLRequest) (*wire.PublicURLResponse, error) {
	url, err := s.storage.PublicURL(req.Bucket, req.Key)
	if err != nil {
		return nil, s.toStatus(ctx, "PublicURL", err)
	}
	return &wire.PublicURLResponse{URL: url}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wire.PingResponse, error) {
	return &wire.PingResponse{Status: "OK"}, nil
}
