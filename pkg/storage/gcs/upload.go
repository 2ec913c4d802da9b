package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const uploadEndpoint = "https://storage.googleapis.com/upload/storage/v1/b/%s/o?uploadType=media&name=%s"

// Uploader is the surface the signing flow consumes: an opaque
// upload(bytes) -> durable URL.
type Uploader interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// Upload writes the payload to the default bucket and returns its public URL.
// Signature images and payment receipts go through here; the caller treats
// the result as an opaque durable URL.
func (c *Client) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if c == nil || c.tokenSource == nil {
		return "", fmt.Errorf("gcs client not initialized")
	}
	objectName = strings.TrimPrefix(strings.TrimSpace(objectName), "/")
	if objectName == "" {
		return "", fmt.Errorf("object name is required")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("payload is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching gcs token: %w", err)
	}

	u := fmt.Sprintf(uploadEndpoint, url.PathEscape(c.defaultBucket), url.QueryEscape(objectName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gcs upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return "", fmt.Errorf("gcs upload failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return "", fmt.Errorf("gcs upload failed: %s", resp.Status)
	}

	return c.ObjectURL(objectName), nil
}

// ObjectURL returns the canonical public URL for an object in the default bucket.
func (c *Client) ObjectURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.defaultBucket, objectName)
}
