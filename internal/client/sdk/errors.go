package sdk

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError converts a gRPC status into the package sentinels so callers can
// use errors.Is without knowing about the transport.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.InvalidArgument:
		return common.ErrorValidation
	case codes.PermissionDenied:
		return common.ErrorForbidden
	case codes.Unauthenticated:
		switch st.Message() {
		case common.ErrTokenExpired.Error():
			return common.ErrTokenExpired
		case common.ErrRefreshTokenExpired.Error():
			return common.ErrRefreshTokenExpired
		}
		return common.ErrorUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.ErrorUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// isSessionRejected reports whether err means the cached session is no
// longer usable.
func isSessionRejected(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrRefreshTokenExpired)
}
