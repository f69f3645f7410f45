package editor

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// BlobHeaders are sent with every upload so that Azure style storage creates
// a block blob.
var BlobHeaders = map[string]string{"x-ms-blob-type": "BlockBlob"}

// BlobClient uploads files to pre-signed storage URLs. The URL carries the
// authorization, so no credentials are attached.
type BlobClient struct {
	http *http.Client
}

func NewBlobClient(transport http.RoundTripper, timeout time.Duration) *BlobClient {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &BlobClient{http: &http.Client{Timeout: timeout, Transport: transport}}
}

// PutFile uploads data with a single PUT.
func (b *BlobClient) PutFile(ctx context.Context, signedURL string, data []byte, contentType string, headers map[string]string) error {
	const op = "blob.put"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signedURL, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, op)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := b.http.Do(req)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return newAPIError(op, res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	logx.Debugf("%s: uploaded %d bytes", op, len(data))
	return nil
}
