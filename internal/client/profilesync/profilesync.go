// Package profilesync keeps a profile page in step with the signed-in
// session: it resolves who is signed in, loads that user's profile and posts,
// uploads avatars, edits the biography and drives the sign-in/sign-up popup.
//
// Local state only ever reflects values the remote side has confirmed.
// Failures are logged and returned; the page shows generic state instead of
// error text.
package profilesync

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"golang.org/x/sync/errgroup"
)

// IdentityProvider issues and reports sessions.
type IdentityProvider interface {
	CurrentSession(ctx context.Context) (*models.Session, error)
	OnSessionChange(fn func(*models.Session)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context) error
}

// RecordStore holds profile and post rows.
type RecordStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	ListPosts(ctx context.Context, userID string) ([]*models.Post, error)
	InsertProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.Profile, error)
}

// ObjectStorage holds binary payloads.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PublicURL(ctx context.Context, bucket, key string) (string, error)
}

const (
	opAvatar = "avatar"
	opBio    = "bio"
	opAuth   = "auth"
)

type ProfileSync struct {
	identity IdentityProvider
	records  RecordStore
	objects  ObjectStorage
	logger   logging.Logger
	now      func() time.Time
	bucket   string

	mu          sync.Mutex
	state       State
	mounted     bool
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	fetchedFor  string
	generation  uint64
	inflight    map[string]bool
}

type Option func(*ProfileSync)

// WithClock replaces time.Now for avatar key derivation.
func WithClock(now func() time.Time) Option {
	return func(p *ProfileSync) { p.now = now }
}

// WithBucket overrides the avatar bucket (default "uploads").
func WithBucket(bucket string) Option {
	return func(p *ProfileSync) { p.bucket = bucket }
}

func New(identity IdentityProvider, records RecordStore, objects ObjectStorage, logger logging.Logger, opts ...Option) *ProfileSync {
	if logger == nil {
		logger = logging.Discard()
	}
	p := &ProfileSync{
		identity: identity,
		records:  records,
		objects:  objects,
		logger:   logger.With("module", "profilesync"),
		now:      time.Now,
		bucket:   common.DefaultBucket,
		inflight: make(map[string]bool),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// State returns a snapshot of the page.
func (p *ProfileSync) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Mount creates the page state, subscribes to session changes and resolves
// the current session. Mounting twice is a no-op.
func (p *ProfileSync) Mount(ctx context.Context) {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.state = State{Status: StatusLoading, Loading: true}
	mountCtx := p.ctx
	p.mu.Unlock()

	unsubscribe := p.identity.OnSessionChange(func(s *models.Session) {
		p.apply(mountCtx, s)
	})
	p.mu.Lock()
	p.unsubscribe = unsubscribe
	p.mu.Unlock()

	session, err := p.identity.CurrentSession(ctx)
	if err != nil {
		p.logger.Error(ctx, "reading session failed", "err", err)
		session = nil
	}
	p.apply(ctx, session)
}

// Unmount discards the page state and stops listening for session changes.
func (p *ProfileSync) Unmount() {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = false
	p.cancel()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.state = State{}
	p.fetchedFor = ""
	p.generation++
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// apply reacts to the session s. A known identity is fetched once per mount.
func (p *ProfileSync) apply(ctx context.Context, s *models.Session) {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return
	}

	if s == nil || s.UserID == "" {
		p.generation++
		p.fetchedFor = ""
		p.state.Status = StatusUnauthenticated
		p.state.Loading = false
		p.state.UserID = ""
		p.state.Profile = nil
		p.state.Posts = nil
		p.state.BioMode = BioViewing
		p.state.BioBuffer = ""
		p.mu.Unlock()
		return
	}

	if p.fetchedFor == s.UserID {
		p.mu.Unlock()
		return
	}
	p.fetchedFor = s.UserID
	gen := p.beginLoadLocked(s.UserID)
	p.mu.Unlock()

	p.fetch(ctx, s.UserID, gen)
}

func (p *ProfileSync) beginLoadLocked(userID string) uint64 {
	p.generation++
	p.state.Status = StatusLoading
	p.state.Loading = true
	p.state.UserID = userID
	p.state.Profile = nil
	p.state.Posts = nil
	p.state.BioMode = BioViewing
	p.state.BioBuffer = ""
	return p.generation
}

// Reload fetches the signed-in user's profile and posts again.
func (p *ProfileSync) Reload(ctx context.Context) error {
	p.mu.Lock()
	userID := p.state.UserID
	if !p.mounted || userID == "" {
		p.mu.Unlock()
		return common.ErrorUnauthorized
	}
	gen := p.beginLoadLocked(userID)
	p.mu.Unlock()

	p.fetch(ctx, userID, gen)
	return nil
}

// fetch loads profile and posts concurrently. Loading is cleared once both
// reads have finished, whatever their outcome.
func (p *ProfileSync) fetch(ctx context.Context, userID string, gen uint64) {
	var (
		profile    *models.Profile
		posts      []*models.Post
		profileErr error
		postsErr   error
	)

	var g errgroup.Group
	g.Go(func() error {
		profile, profileErr = p.records.GetProfile(ctx, userID)
		if profileErr == nil && (profile == nil || profile.ID != userID) {
			profile, profileErr = nil, common.ErrorNotFound
		}
		return profileErr
	})
	g.Go(func() error {
		posts, postsErr = p.records.ListPosts(ctx, userID)
		return postsErr
	})
	_ = g.Wait()

	if profileErr != nil {
		p.logger.Error(ctx, "fetching profile failed", "user_id", userID, "err", profileErr)
	}
	if postsErr != nil {
		p.logger.Error(ctx, "fetching posts failed", "user_id", userID, "err", postsErr)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		return
	}

	p.state.Loading = false
	if profileErr == nil {
		p.state.Status = StatusLoaded
		p.state.Profile = profile.Clone()
		p.state.BioBuffer = profile.BioText()
	} else {
		p.state.Status = StatusEmpty
		p.state.Profile = nil
		p.state.BioBuffer = ""
	}
	if postsErr == nil {
		p.state.Posts = posts
	} else {
		p.state.Posts = nil
	}
}

// begin marks op as running. A second call while op is running gets
// ErrOperationInProgress and makes no remote call.
func (p *ProfileSync) begin(op string) (end func(), err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflight[op] {
		return nil, common.ErrOperationInProgress
	}
	p.inflight[op] = true
	return func() {
		p.mu.Lock()
		delete(p.inflight, op)
		p.mu.Unlock()
	}, nil
}

// profileID returns the loaded profile's id or ErrorNoProfile.
func (p *ProfileSync) profileID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted || p.state.Profile == nil {
		return "", common.ErrorNoProfile
	}
	return p.state.Profile.ID, nil
}
