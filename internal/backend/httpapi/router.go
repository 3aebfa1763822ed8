// Package httpapi serves the HTTP side of the backend: the standalone
// multipart upload endpoint, public object reads, health and metrics.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/backend/metrics"
	"github.com/dmitrijs2005/socialclone/internal/backend/storage"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// PublicObjectPrefix is the path under which stored objects are readable.
const PublicObjectPrefix = "/storage/v1/object/public"

// ObjectStorage is the part of services.StorageService the HTTP side uses.
type ObjectStorage interface {
	Bucket() string
	PublicURL(bucket, key string) (string, error)
	Open(ctx context.Context, bucket, key string) (*storage.Object, error)
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

type Deps struct {
	Storage        ObjectStorage
	Metrics        metrics.Recorder
	Gatherer       prometheus.Gatherer
	RateLimiter    *RateLimiter
	MaxUploadBytes int64
	Logger         logging.Logger
}

// NewRouter wires every HTTP route.
func NewRouter(deps *Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	h := &handlers{
		storage:  deps.Storage,
		metrics:  deps.Metrics,
		maxBytes: deps.MaxUploadBytes,
		logger:   deps.Logger.With("module", "http_api"),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	if deps.RateLimiter != nil {
		r.With(deps.RateLimiter.Middleware).Post("/upload", h.Upload)
	} else {
		r.Post("/upload", h.Upload)
	}

	r.Get(PublicObjectPrefix+"/{bucket}/*", h.PublicObject)

	return r
}

// Server runs the router until its context is cancelled.
type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, handler http.Handler, l logging.Logger) *Server {
	return &Server{address: address, handler: handler, logger: l.With("module", "http_server")}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
