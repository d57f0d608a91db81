package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"
)

// DefaultTimeout bounds a single feed request
const DefaultTimeout = 8 * time.Second

// Result is the outcome of a conditional fetch. Body is nil when there is no new data.
type Result struct {
	Body        []byte
	ETag        string
	NotModified bool
}

// Changed reports whether the fetch produced new data
func (r Result) Changed() bool {
	return r.Body != nil
}

// Client fetches feed documents with conditional requests
type Client struct {
	httpClient *http.Client
}

// New creates a feed client with a per-request timeout
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch performs a conditional GET. A 304, a failed request or an undecodable
// body all yield a Result with no body and the prior ETag; failures are logged.
func (c *Client) Fetch(ctx context.Context, url, etag, identity string) Result {
	unchanged := Result{ETag: etag}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[feed] creating request for %s: %v", url, err)
		return unchanged
	}

	req.Header.Set("User-Agent", identity)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Referer", "https://www.nba.com/")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[feed] request %s: %v", url, err)
		return unchanged
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		unchanged.NotModified = true
		return unchanged
	case http.StatusOK:
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[feed] %s: status=%d, body=%s", url, resp.StatusCode, string(body))
		return unchanged
	}

	body, err := readBody(resp)
	if err != nil {
		log.Printf("[feed] reading %s: %v", url, err)
		return unchanged
	}
	if !json.Valid(body) {
		log.Printf("[feed] %s: response is not valid JSON", url)
		return unchanged
	}

	return Result{Body: body, ETag: resp.Header.Get("ETag")}
}

// FetchJSON fetches and decodes into v when the document changed
func (c *Client) FetchJSON(ctx context.Context, url, etag, identity string, v interface{}) (Result, error) {
	res := c.Fetch(ctx, url, etag, identity)
	if !res.Changed() {
		return res, nil
	}
	if err := json.Unmarshal(res.Body, v); err != nil {
		return Result{ETag: etag}, fmt.Errorf("decoding %s: %w", url, err)
	}
	return res, nil
}

// readBody returns the response body, gunzipping it when the header or the magic bytes say so
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.Header.Get("Content-Encoding") != "gzip" && !IsGzip(raw) {
		return raw, nil
	}
	return Gunzip(raw)
}

// IsGzip reports whether data starts with the gzip magic bytes
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// Gunzip decompresses a gzip payload
func Gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return out, nil
}
