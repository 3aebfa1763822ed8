package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "socialclone.Backend"

// FullMethod returns "/socialclone.Backend/<name>".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// BackendServer is implemented by the backend transport layer.
type BackendServer interface {
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*SessionResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*SessionResponse, error)
	SignOut(context.Context, *SignOutRequest) (*emptypb.Empty, error)
	GetSession(context.Context, *emptypb.Empty) (*SessionResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	ListPosts(context.Context, *ListPostsRequest) (*ListPostsResponse, error)
	InsertProfile(context.Context, *InsertProfileRequest) (*emptypb.Empty, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
	CreatePost(context.Context, *CreatePostRequest) (*PostResponse, error)
	PresignUpload(context.Context, *PresignUploadRequest) (*PresignUploadResponse, error)
	PublicURL(context.Context, *PublicURLRequest) (*PublicURLResponse, error)
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
}

func unary[Req, Resp any](name string, call func(BackendServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BackendServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BackendServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackendServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignUp", BackendServer.SignUp),
		unary("SignIn", BackendServer.SignIn),
		unary("RefreshToken", BackendServer.RefreshToken),
		unary("SignOut", BackendServer.SignOut),
		unary("GetSession", BackendServer.GetSession),
		unary("GetProfile", BackendServer.GetProfile),
		unary("ListPosts", BackendServer.ListPosts),
		unary("InsertProfile", BackendServer.InsertProfile),
		unary("UpdateProfile", BackendServer.UpdateProfile),
		unary("CreatePost", BackendServer.CreatePost),
		unary("PresignUpload", BackendServer.PresignUpload),
		unary("PublicURL", BackendServer.PublicURL),
		unary("Ping", BackendServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "socialclone/backend",
}

// RegisterBackendServer attaches srv to a gRPC server.
func RegisterBackendServer(s grpc.ServiceRegistrar, srv BackendServer) {
	s.RegisterService(&serviceDesc, srv)
}
