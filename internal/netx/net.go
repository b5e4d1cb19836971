// Package netx holds small HTTP helpers used by the CLI.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxAvatarSize bounds what the CLI is willing to upload.
const MaxAvatarSize = 5 << 20

// UploadToPresignedURL PUTs data to a presigned object-storage URL. The
// content type is sniffed from the first bytes.
func UploadToPresignedURL(ctx context.Context, url string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("upload: empty body")
	}
	if len(data) > MaxAvatarSize {
		return fmt.Errorf("upload: %d bytes exceeds limit of %d", len(data), MaxAvatarSize)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
