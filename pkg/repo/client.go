/*
Copyright The Strongbox Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package repo // import "strongbox.io/client/pkg/repo"

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"strongbox.io/client/internal/logging"
	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/getter"
)

// drainBufferSize is the chunk size used when a body is read only to be counted.
const drainBufferSize = 4096

// Location identifies a repository inside a storage on a server.
type Location struct {
	// BaseURL overrides the client's base URL when set.
	BaseURL      string `json:"baseUrl,omitempty"`
	StorageID    string `json:"storageId"`
	RepositoryID string `json:"repositoryId"`
}

// ResourcePath returns rel relative to the server root, inside this location.
func (l Location) ResourcePath(rel string) string {
	return "storages/" + l.StorageID + "/" + l.RepositoryID + "/" + strings.TrimLeft(rel, "/")
}

// FetchResult is the raw outcome of Fetch. Body is un-drained and must be
// closed by the caller.
type FetchResult struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCredentials sets the basic auth credentials sent with every request.
func WithCredentials(creds getter.Credentials) ClientOption {
	return func(c *Client) {
		c.credentials = creds
	}
}

// WithGetterOptions passes options to the transport when it is created.
func WithGetterOptions(opts ...getter.Option) ClientOption {
	return func(c *Client) {
		c.getterOpts = append(c.getterOpts, opts...)
	}
}

// WithTransportConstructor replaces the scheme based transport selection.
func WithTransportConstructor(fn getter.Constructor) ClientOption {
	return func(c *Client) {
		c.newTransport = fn
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.SetLogger(l.Handler())
		}
	}
}

// Client talks to a single artifact repository server.
//
// The transport is created on first use and shared by all subsequent
// operations. A Client is safe for concurrent use.
type Client struct {
	logging.LogHolder

	baseURL      string
	credentials  getter.Credentials
	getterOpts   []getter.Option
	newTransport getter.Constructor

	mu        sync.Mutex
	transport getter.Transport
	closed    bool
}

// NewClient returns a client for the server rooted at baseURL. Trailing
// slashes on baseURL are ignored. No connection is made until the first
// request.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid repository URL %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid repository URL %q: scheme and host are required", baseURL)
	}

	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	providers := getter.All()
	scheme := u.Scheme
	c.newTransport = func(options ...getter.Option) (getter.Transport, error) {
		return providers.ByScheme(scheme, options...)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized server root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResourceURL joins path onto the base URL, adding a leading slash when
// path has none.
func (c *Client) ResourceURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// URLForArtifact returns {base}/storages/{storage}/{repository}/{path}.
// The base comes from loc when it sets one.
func (c *Client) URLForArtifact(coord artifact.Coordinate, loc Location) (string, error) {
	p, err := artifact.ResolvePath(coord)
	if err != nil {
		return "", err
	}
	if loc.StorageID == "" || loc.RepositoryID == "" {
		return "", errors.Errorf("repository location for %s needs both a storage and a repository id", coord)
	}
	base := c.baseURL
	if loc.BaseURL != "" {
		base = strings.TrimRight(loc.BaseURL, "/")
	}
	return base + "/" + loc.ResourcePath(p), nil
}

// getTransport returns the shared transport, creating it on first use.
func (c *Client) getTransport() (getter.Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.transport == nil {
		t, err := c.newTransport(c.getterOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "could not create transport")
		}
		c.transport = t
	}
	return c.transport, nil
}

func (c *Client) do(ctx context.Context, op, u string, header http.Header) (*getter.Response, error) {
	t, err := c.getTransport()
	if err != nil {
		if errors.Is(err, ErrClientClosed) {
			return nil, errors.Wrap(err, op)
		}
		return nil, &TransportError{Op: op, URL: u, Err: err}
	}

	c.Logger().Debug("sending request", "op", op, "url", u, "range", header.Get("Range"))
	resp, err := t.Do(ctx, &getter.Request{
		Method:      http.MethodGet,
		URL:         u,
		Header:      header,
		Credentials: c.credentials,
	})
	if err != nil {
		// Close raced with this request.
		if errors.Is(err, getter.ErrTransportClosed) {
			return nil, errors.Wrap(ErrClientClosed, op)
		}
		return nil, &TransportError{Op: op, URL: u, Err: err}
	}
	c.Logger().Debug("received response", "op", op, "url", u, "status", resp.StatusCode)
	return resp, nil
}

// Exists reports whether path answers 200. Every other status, 404
// included, is reported as false; only transport failures are errors.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	u := c.ResourceURL(path)
	resp, err := c.do(ctx, "exists", u, nil)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		c.Logger().Debug("treating unexpected status as absent", "url", u, "status", resp.StatusCode)
		return false, nil
	}
}

// ProbeStatus requests the artifact at loc and hands back the response
// without interpreting it. The caller must close the body.
func (c *Client) ProbeStatus(ctx context.Context, coord artifact.Coordinate, loc Location) (*getter.Response, error) {
	u, err := c.URLForArtifact(coord, loc)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, "probe", u, nil)
}

// ArtifactExists is the boolean reading of ProbeStatus: 200 is true, 404 is
// false and any other status is a *ResponseError.
func (c *Client) ArtifactExists(ctx context.Context, coord artifact.Coordinate, loc Location) (bool, error) {
	resp, err := c.ProbeStatus(ctx, coord, loc)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	u, _ := c.URLForArtifact(coord, loc)
	return false, &ResponseError{
		Op:         "artifact exists",
		URL:        u,
		StatusCode: resp.StatusCode,
		Reason:     resp.Reason(),
	}
}

// Fetch requests path, asking for the bytes from offset onward when offset
// is positive. The status is not checked: a server without range support
// may answer 200 with the whole resource.
func (c *Client) Fetch(ctx context.Context, path string, offset int64) (*FetchResult, error) {
	var header http.Header
	if offset > 0 {
		header = http.Header{}
		header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := c.do(ctx, "fetch", c.ResourceURL(path), header)
	if err != nil {
		return nil, err
	}
	return &FetchResult{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// FetchFullyAndValidate downloads the artifact from {base}/{repositoryID}
// and discards it, failing when the status is not 200 or nothing was
// transferred. The payload is never held in memory.
func (c *Client) FetchFullyAndValidate(ctx context.Context, coord artifact.Coordinate, repositoryID string) error {
	const op = "fetch and validate"

	p, err := artifact.ResolvePath(coord)
	if err != nil {
		return err
	}
	u := c.ResourceURL(strings.Trim(repositoryID, "/") + "/" + p)

	resp, err := c.do(ctx, op, u, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var total int64
	buf := make([]byte, drainBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		total += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return &TransportError{Op: op, URL: u, Err: errors.Wrapf(err, "stream closed after %d bytes", total)}
		}
	}
	c.Logger().Debug("drained artifact", "url", u, "status", resp.StatusCode, "bytes", total)

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Op: op, URL: u, StatusCode: resp.StatusCode, Err: errNonSuccess}
	}
	if total == 0 {
		return &TransportError{Op: op, URL: u, StatusCode: resp.StatusCode, Err: errEmptyArtifact}
	}
	return nil
}

// RetrieveMetadata fetches and parses the metadata document at path. A
// missing document yields nil metadata and a nil error.
func (c *Client) RetrieveMetadata(ctx context.Context, path string) (*Metadata, error) {
	const op = "retrieve metadata"

	ok, err := c.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	u := c.ResourceURL(path)
	resp, err := c.do(ctx, op, u, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{Op: op, URL: u, StatusCode: resp.StatusCode, Reason: resp.Reason()}
	}

	body := &readTracker{r: resp.Body}
	md, err := ParseMetadata(body)
	if body.err != nil {
		return nil, &TransportError{Op: op, URL: u, Err: body.err}
	}
	if err != nil {
		return nil, &MetadataParseError{URL: u, Err: err}
	}
	return md, nil
}

// Close releases the transport. Calling Close more than once is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	t := c.transport
	c.transport = nil
	c.mu.Unlock()

	if t == nil {
		return nil
	}
	return t.Close()
}

// readTracker remembers the first read failure that is not io.EOF so that a
// broken stream is not mistaken for a malformed document.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
