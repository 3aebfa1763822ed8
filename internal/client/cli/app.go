package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/socialclone/internal/client/config"
	"github.com/dmitrijs2005/socialclone/internal/client/profilesync"
	"github.com/dmitrijs2005/socialclone/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/socialclone/internal/client/sdk"
	"github.com/dmitrijs2005/socialclone/internal/client/uploader"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

const appName = "socialclone"

// publisher creates image posts: object upload, public address, post row.
type publisher interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PublicURL(ctx context.Context, bucket, key string) (string, error)
	CreatePost(ctx context.Context, imageURL, caption *string) (*models.Post, error)
}

type fileUploader interface {
	Upload(ctx context.Context, path string) (*uploader.Result, error)
}

type App struct {
	page      *profilesync.ProfileSync
	publisher publisher
	uploader  fileUploader
	logger    logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	now       func() time.Time
	closers   []func() error
}

// NewApp opens the session cache, connects the SDK and builds the page.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo).With("app", appName)

	db, err := metadata.Open(ctx, c.SessionDBPath)
	if err != nil {
		logger.Error(ctx, "opening session cache failed", "path", c.SessionDBPath, "err", err)
		return nil, err
	}

	client, err := sdk.New(c.ServerEndpointAddr, metadata.NewSQLiteRepository(db),
		sdk.WithLogger(logger),
		sdk.WithTimeout(c.RequestTimeout),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	page := profilesync.New(client, client, client, logger)
	up := uploader.New(c.UploadEndpointURL, nil, logger)

	a := newApp(page, client, up, logger, os.Stdin, os.Stdout)
	a.closers = []func() error{client.Close, db.Close}
	return a, nil
}

func newApp(page *profilesync.ProfileSync, pub publisher, up fileUploader, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		page:      page,
		publisher: pub,
		uploader:  up,
		logger:    logger,
		reader:    bufio.NewReader(in),
		out:       out,
		now:       time.Now,
	}
}

// Run prints the banner, mounts the page and serves the REPL until exit.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	displayAppname(a.out, appName)
	fmt.Fprintln(a.out, "Type 'help' for commands")

	a.page.Mount(ctx)
	defer a.page.Unmount()

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "err", err)
		}
	}
}

func displayAppname(w io.Writer, name string) {
	fig := figure.NewFigure(name, "cybermedium", true)
	fmt.Fprintln(w, fig.String())
}

func (a *App) signedIn() bool {
	return a.page.State().UserID != ""
}

// status is the REPL prompt decoration.
func (a *App) status() string {
	st := a.page.State()
	switch {
	case st.Profile != nil:
		return "(" + st.Profile.Username + ")"
	case st.UserID != "":
		return "(" + st.Status.String() + ")"
	}
	return "(signed out)"
}
