package sdk

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/dmitrijs2005/socialclone/internal/wire"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// fakeBackend is a minimal in-process backend: one user, token checks and
// call recording.
type fakeBackend struct {
	mu sync.Mutex

	access        string
	refresh       string
	expiredAccess string
	expiries      int
	rotations     int

	profiles    map[string]*models.Profile
	posts       []*models.Post
	presignURL  string
	seenTokens  map[string][]string
	signOutReqs []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		access:     "access-1",
		refresh:    "refresh-1",
		profiles:   map[string]*models.Profile{},
		seenTokens: map[string][]string{},
	}
}

func (f *fakeBackend) token(ctx context.Context, method string) string {
	md, _ := metadata.FromIncomingContext(ctx)
	var tok string
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		tok = v[0]
	}
	f.mu.Lock()
	f.seenTokens[method] = append(f.seenTokens[method], tok)
	f.mu.Unlock()
	return tok
}

func (f *fakeBackend) authorize(ctx context.Context, method string) error {
	tok := f.token(ctx, method)
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case tok != "" && tok == f.access:
		return nil
	case tok != "" && tok == f.expiredAccess:
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}
	return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
}

func (f *fakeBackend) tokensFor(method string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seenTokens[method]...)
}

// expireAccess makes the current access token report "token expired".
func (f *fakeBackend) expireAccess() {
	f.mu.Lock()
	f.expiries++
	f.expiredAccess = f.access
	f.access = rotatedName("access-rotated", f.expiries)
	f.mu.Unlock()
}

// rotatedName keeps the first rotated token readable in assertions.
func rotatedName(base string, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// revoke makes every token unknown.
func (f *fakeBackend) revoke() {
	f.mu.Lock()
	f.access = "revoked"
	f.refresh = "revoked"
	f.expiredAccess = ""
	f.mu.Unlock()
}

func (f *fakeBackend) SignUp(_ context.Context, in *wire.SignUpRequest) (*wire.SignUpResponse, error) {
	if in.Email == "taken@example.com" {
		return nil, status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	}
	return &wire.SignUpResponse{UserID: "u2", Email: in.Email, SignupToken: "signup-u2"}, nil
}

func (f *fakeBackend) SignIn(_ context.Context, in *wire.SignInRequest) (*wire.SessionResponse, error) {
	if in.Password != "secret" {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &wire.SessionResponse{
		UserID:       "u1",
		Email:        in.Email,
		AccessToken:  f.access,
		RefreshToken: f.refresh,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeBackend) RefreshToken(_ context.Context, in *wire.RefreshTokenRequest) (*wire.SessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.RefreshToken != f.refresh {
		return nil, status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	}
	f.rotations++
	f.refresh = rotatedName("refresh-rotated", f.rotations)
	return &wire.SessionResponse{
		UserID:       "u1",
		Email:        "a@example.com",
		AccessToken:  f.access,
		RefreshToken: f.refresh,
	}, nil
}

func (f *fakeBackend) SignOut(_ context.Context, in *wire.SignOutRequest) (*emptypb.Empty, error) {
	f.mu.Lock()
	f.signOutReqs = append(f.signOutReqs, in.RefreshToken)
	f.mu.Unlock()
	return &emptypb.Empty{}, nil
}

func (f *fakeBackend) GetSession(ctx context.Context, _ *emptypb.Empty) (*wire.SessionResponse, error) {
	if err := f.authorize(ctx, "GetSession"); err != nil {
		return nil, err
	}
	return &wire.SessionResponse{UserID: "u1", Email: "a@example.com"}, nil
}

func (f *fakeBackend) GetProfile(ctx context.Context, in *wire.GetProfileRequest) (*wire.ProfileResponse, error) {
	if err := f.authorize(ctx, "GetProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[in.ID]
	if !ok {
		return nil, status.Error(codes.NotFound, common.ErrorNotFound.Error())
	}
	return &wire.ProfileResponse{Profile: p}, nil
}

func (f *fakeBackend) ListPosts(ctx context.Context, _ *wire.ListPostsRequest) (*wire.ListPostsResponse, error) {
	if err := f.authorize(ctx, "ListPosts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &wire.ListPostsResponse{Posts: f.posts}, nil
}

func (f *fakeBackend) InsertProfile(ctx context.Context, in *wire.InsertProfileRequest) (*emptypb.Empty, error) {
	tok := f.token(ctx, "InsertProfile")
	f.mu.Lock()
	defer f.mu.Unlock()
	if tok != "signup-"+in.Profile.ID && tok != f.access {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}
	f.profiles[in.Profile.ID] = in.Profile
	return &emptypb.Empty{}, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, in *wire.UpdateProfileRequest) (*wire.ProfileResponse, error) {
	if err := f.authorize(ctx, "UpdateProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[in.ID]
	if !ok {
		return nil, status.Error(codes.NotFound, common.ErrorNotFound.Error())
	}
	if in.Update.AvatarURL != nil {
		p.AvatarURL = in.Update.AvatarURL
	}
	if in.Update.Bio != nil {
		p.Bio = in.Update.Bio
	}
	return &wire.ProfileResponse{Profile: p}, nil
}

func (f *fakeBackend) CreatePost(ctx context.Context, in *wire.CreatePostRequest) (*wire.PostResponse, error) {
	if err := f.authorize(ctx, "CreatePost"); err != nil {
		return nil, err
	}
	return &wire.PostResponse{Post: &models.Post{ID: "p1", UserID: "u1", ImageURL: in.ImageURL, Caption: in.Caption}}, nil
}

func (f *fakeBackend) PresignUpload(ctx context.Context, in *wire.PresignUploadRequest) (*wire.PresignUploadResponse, error) {
	if err := f.authorize(ctx, "PresignUpload"); err != nil {
		return nil, err
	}
	if in.Bucket != "uploads" {
		return nil, status.Error(codes.InvalidArgument, common.ErrorValidation.Error())
	}
	return &wire.PresignUploadResponse{
		URL:     f.presignURL + "/" + in.Key,
		Method:  "PUT",
		Headers: map[string]string{"X-Amz-Meta-Owner": "u1"},
	}, nil
}

func (f *fakeBackend) PublicURL(_ context.Context, in *wire.PublicURLRequest) (*wire.PublicURLResponse, error) {
	return &wire.PublicURLResponse{URL: "http://cdn.test/" + in.Bucket + "/" + in.Key}, nil
}

func (f *fakeBackend) Ping(context.Context, *emptypb.Empty) (*wire.PingResponse, error) {
	return &wire.PingResponse{Status: "OK"}, nil
}

// startBackend serves fb over bufconn and returns the dial option clients
// need to reach it.
func startBackend(t *testing.T, fb *fakeBackend) grpc.DialOption {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	wire.RegisterBackendServer(srv, fb)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func newTestClient(t *testing.T, dialer grpc.DialOption, store *memStore, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithDialOptions(dialer), WithTimeout(5 * time.Second)}, opts...)
	c, err := New("passthrough:///bufnet", store, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}
