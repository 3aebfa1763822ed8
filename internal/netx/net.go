// Package netx holds small HTTP helpers shared by the client.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// PresignedPut describes a presigned upload request.
type PresignedPut struct {
	URL         string
	Method      string
	Headers     map[string]string
	ContentType string
}

// UploadPresigned sends body to a presigned object-storage URL. Method
// defaults to PUT. Any non-2xx answer is an error carrying the response body.
func UploadPresigned(ctx context.Context, client *http.Client, p PresignedPut, body io.Reader, size int64) error {
	method := p.Method
	if method == "" {
		method = http.MethodPut
	}

	req, err := http.NewRequestWithContext(ctx, method, p.URL, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}
	if p.ContentType != "" {
		req.Header.Set("Content-Type", p.ContentType)
	} else if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
