package services

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/socialclone/internal/backend/config"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/identities"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/posts"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/profiles"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/refreshtokens"
	"github.com/dmitrijs2005/socialclone/internal/backend/storage"
	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/dbx"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		SignupTokenValidityDuration:  10 * time.Minute,
		S3Bucket:                     "uploads",
		PublicBaseURL:                "http://localhost:3000/storage/v1/object/public",
	}
}

type fakeIdentities struct {
	mu        sync.Mutex
	byID      map[string]*models.Identity
	createErr error
	getErr    error
	seq       int
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{byID: map[string]*models.Identity{}}
}

func (f *fakeIdentities) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == identity.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.seq++
	c := *identity
	if c.ID == "" {
		c.ID = "u" + string(rune('0'+f.seq))
	}
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeIdentities) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, i := range f.byID {
		if i.Email == email {
			c := *i
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIdentities) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if i, ok := f.byID[id]; ok {
		c := *i
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshTokens struct {
	mu        sync.Mutex
	tokens    map[string]*models.RefreshToken
	createErr error
	deleteErr error
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshTokens) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[token]; ok {
		c := *t
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshTokens) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tokens, token)
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	rows     map[string]*models.Profile
	inserted []*models.Profile
	updates  []models.ProfileUpdate
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[string]*models.Profile{}}
}

func (f *fakeProfiles) Insert(ctx context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.rows[p.ID]; ok {
		return common.ErrorAlreadyExists
	}
	f.rows[p.ID] = p.Clone()
	f.inserted = append(f.inserted, p.Clone())
	return nil
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.rows[id]; ok {
		return p.Clone(), nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProfiles) Update(ctx context.Context, id string, u models.ProfileUpdate) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updates = append(f.updates, u)
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.AvatarURL != nil {
		p.AvatarURL = u.AvatarURL
	}
	if u.Bio != nil {
		p.Bio = u.Bio
	}
	return p.Clone(), nil
}

type fakePosts struct {
	mu    sync.Mutex
	items []*models.Post
	err   error
}

func (f *fakePosts) Create(ctx context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if p.ID == "" {
		p.ID = "p" + string(rune('0'+len(f.items)+1))
	}
	p.CreatedAt = time.Now()
	c := *p
	f.items = append(f.items, &c)
	return nil
}

func (f *fakePosts) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Post
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].UserID == userID {
			c := *f.items[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	identities    *fakeIdentities
	refreshTokens *fakeRefreshTokens
	profiles      *fakeProfiles
	posts         *fakePosts
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		identities:    newFakeIdentities(),
		refreshTokens: newFakeRefreshTokens(),
		profiles:      newFakeProfiles(),
		posts:         &fakePosts{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *fakeRepoManager) Identities(dbx.DBTX) identities.Repository {
	return m.identities
}

func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository {
	return m.profiles
}

func (m *fakeRepoManager) Posts(dbx.DBTX) posts.Repository {
	return m.posts
}

type fakeStore struct {
	presignErr error
	lastKey    string
	objects    map[string]string
}

func (f *fakeStore) PresignPut(ctx context.Context, bucket, key, contentType string, expires time.Duration) (*storage.PresignedRequest, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	f.lastKey = key
	return &storage.PresignedRequest{URL: "http://s3/" + bucket + "/" + key + "?sig=1"}, nil
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return "http://localhost:3000/storage/v1/object/public/" + bucket + "/" + key
}

func (f *fakeStore) Open(ctx context.Context, bucket, key string) (*storage.Object, error) {
	v, ok := f.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &storage.Object{Body: io.NopCloser(strings.NewReader(v)), Size: int64(len(v))}, nil
}

func (f *fakeStore) Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string]string{}
	}
	f.objects[key] = string(b)
	return nil
}
