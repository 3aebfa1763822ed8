// Package sdk is the client side of the socialclone backend. A Client plays
// the three collaborator roles the profile page needs: identity provider,
// record store and object storage. It talks gRPC to the backend, caches the
// signed-in session in the local metadata store and uploads object payloads
// straight to presigned storage URLs.
package sdk

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/dmitrijs2005/socialclone/internal/wire"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
)

const sessionKey = "session"

type Client struct {
	conn       *grpc.ClientConn
	api        wire.Backend
	store      metadata.Repository
	httpClient *http.Client
	logger     logging.Logger
	timeout    time.Duration
	dialOpts   []grpc.DialOption

	refreshGroup singleflight.Group

	mu           sync.Mutex
	session      *models.Session
	loaded       bool
	signupTokens map[string]string
	listeners    map[int]func(*models.Session)
	nextListener int
}

type Option func(*Client)

// WithLogger sets the diagnostic logger. Defaults to a discarding logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient sets the client used for presigned uploads.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds every remote call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDialOptions appends gRPC dial options, e.g. a bufconn dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) { c.dialOpts = append(c.dialOpts, opts...) }
}

// New connects to the backend at addr. store keeps the session between runs.
func New(addr string, store metadata.Repository, opts ...Option) (*Client, error) {
	c := &Client{
		store:        store,
		httpClient:   http.DefaultClient,
		logger:       logging.Discard(),
		signupTokens: make(map[string]string),
		listeners:    make(map[int]func(*models.Session)),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("module", "sdk")

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = wire.NewBackendClient(conn)
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return common.ErrorUnavailable
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
