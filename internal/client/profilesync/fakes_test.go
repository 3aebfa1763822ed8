package profilesync

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

type fakeIdentity struct {
	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(*models.Session)
	next      int

	currentErr  error
	signInErr   error
	signUpID    string
	signUpErr   error
	signInCalls int
	signUpCalls int
}

func newFakeIdentity(session *models.Session) *fakeIdentity {
	return &fakeIdentity{session: session, listeners: map[int]func(*models.Session){}, signUpID: "u2"}
}

func (f *fakeIdentity) CurrentSession(context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	if f.session == nil {
		return nil, nil
	}
	s := *f.session
	return &s, nil
}

func (f *fakeIdentity) OnSessionChange(fn func(*models.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// emit replaces the session and notifies listeners synchronously.
func (f *fakeIdentity) emit(s *models.Session) {
	f.mu.Lock()
	f.session = s
	fns := make([]func(*models.Session), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (f *fakeIdentity) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *fakeIdentity) SignIn(_ context.Context, email, _ string) (*models.Session, error) {
	f.mu.Lock()
	f.signInCalls++
	err := f.signInErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := &models.Session{UserID: "u1", Email: email, AccessToken: "a"}
	f.emit(s)
	return s, nil
}

func (f *fakeIdentity) SignUp(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpCalls++
	if f.signUpErr != nil {
		return "", f.signUpErr
	}
	return f.signUpID, nil
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.emit(nil)
	return nil
}

type fakeRecords struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	posts    map[string][]*models.Post

	getErr    error
	listErr   error
	insertErr error
	updateErr error

	getCalls    int
	insertCalls int
	updateCalls int
	inserted    []*models.Profile

	// updateGate, when set, blocks UpdateProfile until closed.
	updateGate    chan struct{}
	updateStarted chan struct{}
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{profiles: map[string]*models.Profile{}, posts: map[string][]*models.Post{}}
}

func (f *fakeRecords) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p.Clone(), nil
}

func (f *fakeRecords) ListPosts(_ context.Context, userID string) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.posts[userID], nil
}

func (f *fakeRecords) InsertProfile(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, p)
	f.profiles[p.ID] = p.Clone()
	return nil
}

func (f *fakeRecords) UpdateProfile(_ context.Context, id string, u models.ProfileUpdate) (*models.Profile, error) {
	f.mu.Lock()
	f.updateCalls++
	gate, started := f.updateGate, f.updateStarted
	f.mu.Unlock()

	if gate != nil {
		if started != nil {
			close(started)
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.AvatarURL != nil {
		v := *u.AvatarURL
		p.AvatarURL = &v
	}
	if u.Bio != nil {
		v := *u.Bio
		p.Bio = &v
	}
	return p.Clone(), nil
}

func (f *fakeRecords) stored(id string) *models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id].Clone()
}

type fakeObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	urlErr    error
}

func newFakeObjects() *fakeObjects { return &fakeObjects{objects: map[string][]byte{}} }

func (f *fakeObjects) Upload(_ context.Context, bucket, key string, body io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+key] = b
	return nil
}

func (f *fakeObjects) PublicURL(_ context.Context, bucket, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "http://localhost:3000/storage/v1/object/public/" + bucket + "/" + key, nil
}

func (f *fakeObjects) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	return out
}
