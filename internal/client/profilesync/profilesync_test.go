package profilesync

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/dmitrijs2005/socialclone/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type harness struct {
	identity *fakeIdentity
	records  *fakeRecords
	objects  *fakeObjects
	sync     *ProfileSync
}

func newHarness(t *testing.T, session *models.Session, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		identity: newFakeIdentity(session),
		records:  newFakeRecords(),
		objects:  newFakeObjects(),
	}
	h.sync = New(h.identity, h.records, h.objects, logging.Discard(), opts...)
	t.Cleanup(h.sync.Unmount)
	return h
}

func u1Session() *models.Session { return &models.Session{UserID: "u1", Email: "a@example.com"} }

func TestMount_NoSession(t *testing.T) {
	tests := []struct {
		name       string
		currentErr error
	}{
		{name: "absent"},
		{name: "session read fails", currentErr: errors.New("offline")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.identity.currentErr = tt.currentErr

			h.sync.Mount(context.Background())

			st := h.sync.State()
			assert.Equal(t, StatusUnauthenticated, st.Status)
			assert.False(t, st.Loading)
			assert.Nil(t, st.Profile)
			assert.Empty(t, st.Posts)
			assert.Zero(t, h.records.getCalls)
		})
	}
}

func TestMount_SeedsBioBufferFromRecord(t *testing.T) {
	tests := []struct {
		name string
		bio  *string
		want string
	}{
		{name: "with bio", bio: strPtr("hello"), want: "hello"},
		{name: "without bio", bio: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, u1Session())
			now := time.Now()
			h.records.profiles["u1"] = &models.Profile{ID: "u1", Username: "alice", Bio: tt.bio}
			h.records.posts["u1"] = []*models.Post{
				{ID: "p2", UserID: "u1", CreatedAt: now},
				{ID: "p1", UserID: "u1", CreatedAt: now.Add(-time.Hour)},
			}

			h.sync.Mount(context.Background())

			st := h.sync.State()
			assert.Equal(t, StatusLoaded, st.Status)
			assert.False(t, st.Loading)
			assert.Equal(t, tt.want, st.BioBuffer)
			assert.Equal(t, BioViewing, st.BioMode)
			assert.Empty(t, cmp.Diff(h.records.profiles["u1"], st.Profile))
			require.Len(t, st.Posts, 2)
			assert.Equal(t, "p2", st.Posts[0].ID)
		})
	}
}

func TestMount_FetchFailureClearsLoading(t *testing.T) {
	h := newHarness(t, u1Session())
	h.records.getErr = errors.New("store down")
	h.records.listErr = errors.New("store down")

	h.sync.Mount(context.Background())

	st := h.sync.State()
	assert.Equal(t, StatusEmpty, st.Status)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Profile)
	assert.Empty(t, st.Posts)
	assert.Equal(t, "u1", st.UserID)
}

func TestMount_MissingProfile(t *testing.T) {
	h := newHarness(t, u1Session())

	h.sync.Mount(context.Background())

	st := h.sync.State()
	assert.Equal(t, StatusEmpty, st.Status)
	assert.Nil(t, st.Profile)
}

func TestMount_RejectsProfileForOtherUser(t *testing.T) {
	h := newHarness(t, u1Session())
	h.records.profiles["u1"] = &models.Profile{ID: "someone-else"}

	h.sync.Mount(context.Background())

	assert.Equal(t, StatusEmpty, h.sync.State().Status)
}

func TestFetch_OncePerIdentity(t *testing.T) {
	h := newHarness(t, u1Session())
	h.records.profiles["u1"] = &models.Profile{ID: "u1"}
	h.records.profiles["u3"] = &models.Profile{ID: "u3"}

	h.sync.Mount(context.Background())
	h.sync.Mount(context.Background())
	h.identity.emit(u1Session())
	assert.Equal(t, 1, h.records.getCalls)

	h.identity.emit(&models.Session{UserID: "u3"})
	assert.Equal(t, 2, h.records.getCalls)
	assert.Equal(t, "u3", h.sync.State().Profile.ID)

	require.NoError(t, h.sync.Reload(context.Background()))
	assert.Equal(t, 3, h.records.getCalls)
}

func TestSessionEnds_ClearsState(t *testing.T) {
	h := newHarness(t, u1Session())
	h.records.profiles["u1"] = &models.Profile{ID: "u1", Bio: strPtr("hello")}
	h.records.posts["u1"] = []*models.Post{{ID: "p1", UserID: "u1"}}
	h.sync.Mount(context.Background())

	require.NoError(t, h.sync.SignOut(context.Background()))

	st := h.sync.State()
	assert.Equal(t, StatusUnauthenticated, st.Status)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Profile)
	assert.Empty(t, st.Posts)
	assert.Equal(t, "", st.BioBuffer)

	assert.ErrorIs(t, h.sync.Reload(context.Background()), common.ErrorUnauthorized)
}

func TestUnmount_DiscardsStateAndUnsubscribes(t *testing.T) {
	h := newHarness(t, u1Session())
	h.records.profiles["u1"] = &models.Profile{ID: "u1"}
	h.sync.Mount(context.Background())
	require.Equal(t, 1, h.identity.listenerCount())

	h.sync.Unmount()
	h.sync.Unmount()

	assert.Equal(t, State{}, h.sync.State())
	assert.Equal(t, 0, h.identity.listenerCount())

	h.identity.emit(&models.Session{UserID: "u1"})
	assert.Equal(t, 1, h.records.getCalls)
	assert.Equal(t, StatusUnmounted, h.sync.State().Status)
}

func TestState_ReturnsCopies(t *testing.T) {
	h := newHarness(t, u1Session())
	h.records.profiles["u1"] = &models.Profile{ID: "u1", Bio: strPtr("hello")}
	h.records.posts["u1"] = []*models.Post{{ID: "p1"}}
	h.sync.Mount(context.Background())

	st := h.sync.State()
	*st.Profile.Bio = "mutated"
	st.Posts[0].ID = "mutated"

	again := h.sync.State()
	assert.Equal(t, "hello", again.Profile.BioText())
	assert.Equal(t, "p1", again.Posts[0].ID)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "unmounted", StatusUnmounted.String())
	assert.Equal(t, "unauthenticated", StatusUnauthenticated.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "loaded", StatusLoaded.String())
	assert.Equal(t, "empty", StatusEmpty.String())
	assert.Equal(t, "sign-in", ModeSignIn.String())
	assert.Equal(t, "sign-up", ModeSignUp.String())
}

func TestNew_NilLoggerAndOptions(t *testing.T) {
	at := time.UnixMilli(42)
	p := New(newFakeIdentity(nil), newFakeRecords(), newFakeObjects(), nil,
		WithBucket("avatars"), WithClock(func() time.Time { return at }))

	assert.Equal(t, "avatars", p.bucket)
	assert.Equal(t, at, p.now())
	assert.True(t, strings.HasPrefix(ObjectKey("u1", p.now(), "a.png"), "u1/42-"))
}
