package services

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/socialclone/internal/backend/config"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/repomanager"
	"github.com/dmitrijs2005/socialclone/internal/backend/sanitize"
	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/models"
)

// RecordService serves the profile and post tables. Mutations are only
// allowed on rows owned by the caller.
type RecordService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	sanitizer     sanitize.TextSanitizer
	publicBaseURL string
	bucket        string
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, s sanitize.TextSanitizer, cfg *config.Config) *RecordService {
	return &RecordService{
		db:            db,
		repomanager:   m,
		sanitizer:     s,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/") + "/",
		bucket:        cfg.S3Bucket,
	}
}

// ownsObject reports whether rawURL is the public address of an object under
// the caller's own key prefix.
func (s *RecordService) ownsObject(callerID, rawURL string) bool {
	prefix := s.publicBaseURL + url.PathEscape(s.bucket) + "/" + url.PathEscape(callerID) + "/"
	rest, ok := strings.CutPrefix(rawURL, prefix)
	if !ok || rest == "" {
		return false
	}
	for _, seg := range strings.Split(rest, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func (s *RecordService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if id == "" {
		return nil, common.ErrorValidation
	}
	return s.repomanager.Profiles(s.db).GetByID(ctx, id)
}

func (s *RecordService) ListPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	if userID == "" {
		return nil, common.ErrorValidation
	}
	return s.repomanager.Posts(s.db).ListByUser(ctx, userID)
}

// InsertProfile creates the profile row for the caller's own identity.
func (s *RecordService) InsertProfile(ctx context.Context, callerID string, profile *models.Profile) error {
	if profile == nil || profile.ID == "" {
		return common.ErrorValidation
	}
	if profile.ID != callerID {
		return common.ErrorForbidden
	}

	row := &models.Profile{
		ID:       profile.ID,
		Email:    normalizeEmail(profile.Email),
		Username: s.sanitizer.Text(profile.Username),
	}
	if row.Username == "" {
		return common.ErrorValidation
	}

	return s.repomanager.Profiles(s.db).Insert(ctx, row)
}

// UpdateProfile writes avatar_url and/or bio on the caller's own profile and
// returns the stored row.
func (s *RecordService) UpdateProfile(ctx context.Context, callerID, id string, update models.ProfileUpdate) (*models.Profile, error) {
	if id != callerID {
		return nil, common.ErrorForbidden
	}
	if update.Empty() {
		return nil, common.ErrorValidation
	}

	clean := models.ProfileUpdate{}
	if update.AvatarURL != nil {
		if !s.ownsObject(callerID, *update.AvatarURL) {
			return nil, common.ErrorValidation
		}
		v := *update.AvatarURL
		clean.AvatarURL = &v
	}
	if update.Bio != nil {
		v := s.sanitizer.Text(*update.Bio)
		clean.Bio = &v
	}

	return s.repomanager.Profiles(s.db).Update(ctx, id, clean)
}

// CreatePost publishes a post owned by the caller.
func (s *RecordService) CreatePost(ctx context.Context, callerID string, imageURL, caption *string) (*models.Post, error) {
	if imageURL == nil && caption == nil {
		return nil, common.ErrorValidation
	}
	post := &models.Post{UserID: callerID}
	if imageURL != nil {
		if !s.ownsObject(callerID, *imageURL) {
			return nil, common.ErrorValidation
		}
		v := *imageURL
		post.ImageURL = &v
	}
	if caption != nil {
		v := s.sanitizer.Text(*caption)
		post.Caption = &v
	}

	if err := s.repomanager.Posts(s.db).Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
