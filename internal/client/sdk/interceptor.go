package sdk

import (
	"context"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type tokenOverrideKey struct{}

// withTokenOverride makes the next call carry token instead of the session
// access token. Calls made this way are never refreshed.
func withTokenOverride(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenOverrideKey{}, token)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the current access token. When the server
// answers "token expired" it rotates the tokens once and retries the call.
func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token, ok := ctx.Value(tokenOverrideKey{}).(string); ok {
		return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
	}

	access, refresh := c.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" || method == wire.FullMethod("RefreshToken") {
		return err
	}

	if rerr := c.refreshOnce(ctx, refresh); rerr != nil {
		c.logger.Warn(ctx, "token refresh failed", "err", rerr)
		return err
	}

	access, _ = c.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}
