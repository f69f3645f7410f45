package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/hierarchy"
	"github.com/manojSRawat/sunbird-resource-library/internal/core/library"
	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// Paths are the endpoint templates below the base URL. %s is the collection id.
type Paths struct {
	Hierarchy string
	Search    string
	UploadURL string
	Import    string
}

func DefaultPaths() Paths {
	return Paths{
		Hierarchy: "content/v3/hierarchy/%s",
		Search:    "composite/v3/search",
		UploadURL: "content/v3/upload/url/%s",
		Import:    "collection/v1/import/%s",
	}
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string // bearer token of the API gateway
	UserToken string // optional x-authenticated-user-token
	ChannelID string
	Timeout   time.Duration
	Transport http.RoundTripper
	Paths     Paths
}

// Client talks to the collection editor API.
type Client struct {
	http      *http.Client
	base      string
	token     string
	userToken string
	channelID string
	paths     Paths
}

func New(opt Options) *Client {
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	if opt.Paths == (Paths{}) {
		opt.Paths = DefaultPaths()
	}
	return &Client{
		http:      &http.Client{Timeout: opt.Timeout, Transport: opt.Transport},
		base:      strings.TrimRight(opt.BaseURL, "/"),
		token:     opt.Token,
		userToken: opt.UserToken,
		channelID: opt.ChannelID,
		paths:     opt.Paths,
	}
}

func (c *Client) endpoint(tmpl, id string, query url.Values) string {
	p := tmpl
	if strings.Contains(tmpl, "%s") {
		p = fmt.Sprintf(tmpl, url.PathEscape(id))
	}
	u := c.base + "/" + strings.TrimLeft(p, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userToken != "" {
		req.Header.Set("x-authenticated-user-token", c.userToken)
	}
	if c.channelID != "" {
		req.Header.Set("X-Channel-Id", c.channelID)
	}
}

// call performs an authorized request and decodes result into out.
func (c *Client) call(ctx context.Context, op, method, u string, body io.Reader, contentType string, out any) error {
	if c.token == "" {
		return ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, op)
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := newAPIError(op, res)
		logx.Warnf("%s %s -> %d %s", method, u, res.StatusCode, apiErr.Message)
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return errors.Wrapf(err, "%s: decode response", op)
	}
	if len(env.Result) == 0 {
		return errors.Errorf("%s: response without result", op)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return errors.Wrapf(err, "%s: decode result", op)
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// ---------- Hierarchy ----------

// FetchHierarchy returns the root node of the collection in edit mode.
func (c *Client) FetchHierarchy(ctx context.Context, collectionID string) (hierarchy.Document, error) {
	const op = "hierarchy.get"
	var result map[string]any
	u := c.endpoint(c.paths.Hierarchy, collectionID, url.Values{"mode": {"edit"}})
	if err := c.call(ctx, op, http.MethodGet, u, nil, "", &result); err != nil {
		return nil, err
	}
	doc, ok := hierarchy.RootFromResult(result)
	if !ok {
		return nil, errors.Errorf("%s: no hierarchy for %s", op, collectionID)
	}
	return doc, nil
}

// ---------- Search ----------

// SearchContent runs a composite search and returns every list partition of
// the result keyed by object type.
func (c *Client) SearchContent(ctx context.Context, sr library.SearchRequest) (library.SearchResult, error) {
	const op = "content.search"
	body, err := jsonBody(map[string]any{"request": sr})
	if err != nil {
		return library.SearchResult{}, errors.Wrap(err, op)
	}
	var raw map[string]json.RawMessage
	if err := c.call(ctx, op, http.MethodPost, c.endpoint(c.paths.Search, "", nil), body, "application/json", &raw); err != nil {
		return library.SearchResult{}, err
	}
	out := library.SearchResult{Partitions: make(map[string][]library.Item)}
	for key, msg := range raw {
		if key == "count" {
			if err := json.Unmarshal(msg, &out.Count); err != nil {
				logx.Warnf("%s: unreadable count %s: %v", op, msg, err)
			}
			continue
		}
		trimmed := bytes.TrimSpace(msg)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			logx.Warnf("%s: skip partition %q: %v", op, key, err)
			continue
		}
		items := make([]library.Item, 0, len(elems))
		for i, el := range elems {
			var it library.Item
			if err := json.Unmarshal(el, &it); err != nil {
				logx.Warnf("%s: skip %s[%d]: %v", op, key, i, err)
				continue
			}
			items = append(items, it)
		}
		out.Partitions[key] = items
	}
	return out, nil
}

// ---------- CSV import ----------

// UploadSlot is a short lived capability to upload one file.
type UploadSlot struct {
	SignedURL string `json:"pre_signed_url"`
	URLExpiry string `json:"url_expiry,omitempty"`
}

// RequestUploadSlot asks for a pre-signed upload URL for fileName, scoped to
// the collection and purpose (e.g. "hierarchy").
func (c *Client) RequestUploadSlot(ctx context.Context, fileName, collectionID, purpose string) (UploadSlot, error) {
	const op = "upload.url"
	body, err := jsonBody(map[string]any{"request": map[string]any{"content": map[string]string{"fileName": fileName}}})
	if err != nil {
		return UploadSlot{}, errors.Wrap(err, op)
	}
	var q url.Values
	if purpose != "" {
		q = url.Values{"type": {purpose}}
	}
	var slot UploadSlot
	if err := c.call(ctx, op, http.MethodPost, c.endpoint(c.paths.UploadURL, collectionID, q), body, "application/json", &slot); err != nil {
		return UploadSlot{}, err
	}
	if slot.SignedURL == "" {
		return UploadSlot{}, errors.Errorf("%s: empty pre-signed url", op)
	}
	return slot, nil
}

// ConfirmImport tells the backend that the CSV at fileURL is ready to be
// ingested into the collection.
func (c *Client) ConfirmImport(ctx context.Context, fileURL, mimeType, collectionID string) error {
	const op = "collection.import"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileUrl", fileURL); err != nil {
		return errors.Wrap(err, op)
	}
	if err := mw.WriteField("mimeType", mimeType); err != nil {
		return errors.Wrap(err, op)
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, op)
	}
	return c.call(ctx, op, http.MethodPost, c.endpoint(c.paths.Import, collectionID, nil), &buf, mw.FormDataContentType(), nil)
}

// DownloadFile fetches an absolute URL without API credentials.
func (c *Client) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	const op = "file.download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, newAPIError(op, res)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return data, nil
}
