package services

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/backend/config"
	"github.com/dmitrijs2005/socialclone/internal/backend/storage"
	"github.com/dmitrijs2005/socialclone/internal/common"
)

const presignValidity = 15 * time.Minute

// ObjectStore is the subset of storage.S3Store used by StorageService.
type ObjectStore interface {
	PresignPut(ctx context.Context, bucket, key, contentType string, expires time.Duration) (*storage.PresignedRequest, error)
	PublicURL(bucket, key string) string
	Open(ctx context.Context, bucket, key string) (*storage.Object, error)
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
}

// StorageService guards access to the object store: clients may only write
// under their own key prefix in the configured bucket.
type StorageService struct {
	store  ObjectStore
	bucket string
}

func NewStorageService(store ObjectStore, cfg *config.Config) *StorageService {
	return &StorageService{store: store, bucket: cfg.S3Bucket}
}

func (s *StorageService) Bucket() string { return s.bucket }

// validKey accepts relative keys without empty, "." or ".." segments. Dots
// inside a segment, as in "cat..png", are fine.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// PresignUpload authorizes a direct upload of bucket/key by callerID.
func (s *StorageService) PresignUpload(ctx context.Context, callerID, bucket, key, contentType string) (*storage.PresignedRequest, error) {
	if bucket != s.bucket || !validKey(key) {
		return nil, common.ErrorValidation
	}
	if !strings.HasPrefix(key, callerID+"/") {
		return nil, common.ErrorForbidden
	}

	req, err := s.store.PresignPut(ctx, bucket, key, contentType, presignValidity)
	if err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = http.MethodPut
	}
	return req, nil
}

// PublicURL resolves the public address of bucket/key. It never contacts the store.
func (s *StorageService) PublicURL(bucket, key string) (string, error) {
	if bucket != s.bucket || !validKey(key) {
		return "", common.ErrorValidation
	}
	return s.store.PublicURL(bucket, key), nil
}

func (s *StorageService) Open(ctx context.Context, bucket, key string) (*storage.Object, error) {
	if bucket != s.bucket || !validKey(key) {
		return nil, common.ErrorNotFound
	}
	return s.store.Open(ctx, bucket, key)
}

// Put stores an object in the configured bucket.
func (s *StorageService) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if !validKey(key) {
		return common.ErrorValidation
	}
	return s.store.Put(ctx, s.bucket, key, body, size, contentType)
}
