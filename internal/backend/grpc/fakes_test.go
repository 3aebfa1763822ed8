package grpc

import (
	"context"

	"github.com/dmitrijs2005/socialclone/internal/backend/storage"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

type fakeIdentity struct {
	signUpID    string
	signUpErr   error
	session     *models.Session
	sessionErr  error
	signedOut   []string
	gotUserID   string
	refreshWith string
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (*models.Identity, string, error) {
	if f.signUpErr != nil {
		return nil, "", f.signUpErr
	}
	return &models.Identity{ID: f.signUpID, Email: email}, "signup-token", nil
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeIdentity) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	f.refreshWith = refreshToken
	return f.session, f.sessionErr
}

func (f *fakeIdentity) SignOut(ctx context.Context, refreshToken string) error {
	f.signedOut = append(f.signedOut, refreshToken)
	return nil
}

func (f *fakeIdentity) GetSession(ctx context.Context, userID string) (*models.Session, error) {
	f.gotUserID = userID
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &models.Session{UserID: userID, Email: "neo@example.org"}, nil
}

type fakeRecords struct {
	profile   *models.Profile
	err       error
	posts     []*models.Post
	insertBy  string
	inserted  *models.Profile
	updateBy  string
	updateFor string
	update    models.ProfileUpdate
}

func (f *fakeRecords) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return f.profile, f.err
}

func (f *fakeRecords) ListPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	return f.posts, f.err
}

func (f *fakeRecords) InsertProfile(ctx context.Context, callerID string, profile *models.Profile) error {
	f.insertBy, f.inserted = callerID, profile
	return f.err
}

func (f *fakeRecords) UpdateProfile(ctx context.Context, callerID, id string, update models.ProfileUpdate) (*models.Profile, error) {
	f.updateBy, f.updateFor, f.update = callerID, id, update
	return f.profile, f.err
}

func (f *fakeRecords) CreatePost(ctx context.Context, callerID string, imageURL, caption *string) (*models.Post, error) {
	return &models.Post{ID: "p1", UserID: callerID, ImageURL: imageURL, Caption: caption}, f.err
}

type fakeStorage struct {
	caller string
	err    error
}

func (f *fakeStorage) PresignUpload(ctx context.Context, callerID, bucket, key, contentType string) (*storage.PresignedRequest, error) {
	f.caller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return &storage.PresignedRequest{URL: "http://s3/" + bucket + "/" + key, Method: "PUT"}, nil
}

func (f *fakeStorage) PublicURL(bucket, key string) (string, error) {
	return "http://public/" + bucket + "/" + key, f.err
}
