// Package uploader posts a single file to the backend's multipart upload
// endpoint. It is independent of the avatar flow.
package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/socialclone/internal/logging"
)

// Result is the endpoint's JSON reply.
type Result struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type Uploader struct {
	endpoint   string
	httpClient *http.Client
	logger     logging.Logger
}

func New(endpoint string, httpClient *http.Client, logger logging.Logger) *Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Uploader{endpoint: endpoint, httpClient: httpClient, logger: logger.With("module", "uploader")}
}

// Upload sends the file at path as the "file" part and logs the decoded reply.
func (u *Uploader) Upload(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		u.logger.Error(ctx, "upload failed", "path", path, "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := fmt.Errorf("upload %s: unexpected status %d", filepath.Base(path), resp.StatusCode)
		u.logger.Error(ctx, "upload rejected", "path", path, "status", resp.StatusCode)
		return nil, err
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		u.logger.Error(ctx, "decoding upload response failed", "err", err)
		return nil, err
	}

	u.logger.Info(ctx, "uploaded", "key", res.Key, "url", res.URL, "size", res.Size, "content_type", res.ContentType)
	return &res, nil
}
