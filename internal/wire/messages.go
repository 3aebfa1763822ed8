package wire

import (
	"time"

	"github.com/dmitrijs2005/socialclone/internal/models"
)

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpResponse carries the new identity and a short-lived token that only
// authorizes creating that identity's profile row.
type SignUpResponse struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	SignupToken string `json:"signup_token"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GetProfileRequest struct {
	ID string `json:"id"`
}

type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

type ListPostsRequest struct {
	UserID string `json:"user_id"`
}

type ListPostsResponse struct {
	Posts []*models.Post `json:"posts"`
}

type InsertProfileRequest struct {
	Profile *models.Profile `json:"profile"`
}

type UpdateProfileRequest struct {
	ID     string               `json:"id"`
	Update models.ProfileUpdate `json:"update"`
}

type CreatePostRequest struct {
	ImageURL *string `json:"image_url,omitempty"`
	Caption  *string `json:"caption,omitempty"`
}

type PostResponse struct {
	Post *models.Post `json:"post"`
}

type PresignUploadRequest struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	ContentType string `json:"content_type,omitempty"`
}

type PresignUploadResponse struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
}

type PublicURLRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type PublicURLResponse struct {
	URL string `json:"url"`
}

type PingResponse struct {
	Status string `json:"status"`
}
