package sdk

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/socialclone/internal/netx"
	"github.com/dmitrijs2005/socialclone/internal/wire"
)

// Upload stores body under bucket/key: the backend presigns a PUT and the
// payload goes straight to object storage.
func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	if err := c.loadSession(ctx); err != nil {
		return err
	}

	rpcCtx, cancel := c.withTimeout(ctx)
	presigned, err := c.api.PresignUpload(rpcCtx, &wire.PresignUploadRequest{
		Bucket:      bucket,
		Key:         key,
		ContentType: contentType,
	})
	cancel()
	if err != nil {
		return mapError(err)
	}

	err = netx.UploadPresigned(ctx, c.httpClient, netx.PresignedPut{
		URL:         presigned.URL,
		Method:      presigned.Method,
		Headers:     presigned.Headers,
		ContentType: contentType,
	}, body, size)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// PublicURL resolves the public address of an object.
func (c *Client) PublicURL(ctx context.Context, bucket, key string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.PublicURL(ctx, &wire.PublicURLRequest{Bucket: bucket, Key: key})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}
