package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/socialclone/internal/backend/metrics"
	"github.com/dmitrijs2005/socialclone/internal/common"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const uploadField = "file"

type handlers struct {
	storage  ObjectStorage
	metrics  metrics.Recorder
	maxBytes int64
	logger   logging.Logger
	now      func() time.Time
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// cleanFileName keeps the base name and drops characters that would
// complicate object keys.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '?' || r == '#' || r == '%':
			return -1
		case r < 0x20:
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// Upload accepts one multipart file part and stores it under
// public/<unix-ms>-<uuid>-<name>.
func (h *handlers) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.maxBytes > 0 {
		// room for the multipart envelope
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.fail(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.fail(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		h.fail(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("public/%d-%s-%s", h.now().UnixMilli(), uuid.NewString(), cleanFileName(header.Filename))

	if err := h.storage.Put(ctx, key, file, header.Size, contentType); err != nil {
		h.logger.Error(ctx, "upload failed", "key", key, "err", err)
		h.fail(w, http.StatusBadGateway, "upload failed")
		return
	}

	publicURL, err := h.storage.PublicURL(h.storage.Bucket(), key)
	if err != nil {
		h.logger.Error(ctx, "public url failed", "key", key, "err", err)
		h.fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info(ctx, "file uploaded", "key", key, "size", header.Size)
	h.metrics.RecordUpload(http.StatusOK, header.Size)
	writeJSON(w, http.StatusOK, UploadResponse{
		Key:         key,
		URL:         publicURL,
		Size:        header.Size,
		ContentType: contentType,
	})
}

func (h *handlers) fail(w http.ResponseWriter, status int, msg string) {
	h.metrics.RecordUpload(status, 0)
	writeJSON(w, status, errorBody{Error: msg})
}

// PublicObject streams a stored object.
func (h *handlers) PublicObject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}

	obj, err := h.storage.Open(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error(ctx, "open object failed", "bucket", bucket, "key", key, "err", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn(ctx, "object stream interrupted", "key", key, "err", err)
	}
}
