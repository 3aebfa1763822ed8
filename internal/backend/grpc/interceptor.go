package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/socialclone/internal/backend/auth"
	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

// publicMethods need no access token.
var publicMethods = map[string]bool{
	"SignUp":       true,
	"SignIn":       true,
	"RefreshToken": true,
	"Ping":         true,
	"PublicURL":    true,
}

// signupMethods additionally accept a sign-up scoped token.
var signupMethods = map[string]bool{
	"InsertProfile": true,
}

func methodName(fullMethod string) string {
	return strings.TrimPrefix(fullMethod, "/"+wire.ServiceName+"/")
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	method := methodName(info.FullMethod)
	if publicMethods[method] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	switch claims.Scope {
	case auth.ScopeSession:
	case auth.ScopeSignup:
		if !signupMethods[method] {
			return nil, status.Error(codes.PermissionDenied, "insufficient scope")
		}
	default:
		return nil, status.Error(codes.PermissionDenied, "insufficient scope")
	}

	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)

	return handler(ctx, req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	s.metrics.RecordRPC(methodName(info.FullMethod), status.Code(err).String())
	return resp, err
}
