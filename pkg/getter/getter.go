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

/*
Package getter provides the transport used to talk to artifact repositories.

The repository client depends only on the Transport interface: perform one
request given a method, URL, headers and optional credentials, and hand back
the status, headers and an un-drained body.
*/
package getter

import (
	"context"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultHTTPTimeout is the default request timeout in seconds.
const DefaultHTTPTimeout = 120

// ErrTransportClosed is returned by Do after Close.
var ErrTransportClosed = errors.New("transport is closed")

// Credentials holds HTTP basic authentication material. An empty field
// counts as absent.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// IsSet reports whether both username and password are present. Only then
// is an Authorization header sent.
func (c Credentials) IsSet() bool {
	return c.Username != "" && c.Password != ""
}

// Request is a single body-less repository request.
type Request struct {
	// Method defaults to GET.
	Method      string
	URL         string
	Header      http.Header
	Credentials Credentials
}

// Response is the transport's answer. Body must be drained or closed by
// whoever receives it.
type Response struct {
	StatusCode int
	// Status is the full status line, e.g. "404 Not Found".
	Status string
	Header http.Header
	Body   io.ReadCloser
}

// Reason returns the reason phrase of the status line.
func (r *Response) Reason() string {
	if reason := strings.TrimSpace(strings.TrimPrefix(r.Status, strconv.Itoa(r.StatusCode))); reason != "" {
		return reason
	}
	return http.StatusText(r.StatusCode)
}

// Transport performs repository requests. Implementations must be safe for
// concurrent use.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	// Close releases pooled connections. Calling it more than once is a no-op.
	Close() error
}

// options are generic parameters provided to a transport during instantiation.
type options struct {
	certFile              string
	keyFile               string
	caFile                string
	serverName            string
	insecureSkipVerifyTLS bool
	userAgent             string
	timeout               time.Duration
	transport             *http.Transport
}

// Option allows specifying various settings configurable by the user for
// overriding the defaults used by a Transport.
type Option func(*options)

// WithUserAgent sets the request's User-Agent header to use the provided agent name.
func WithUserAgent(userAgent string) Option {
	return func(opts *options) {
		opts.userAgent = userAgent
	}
}

// WithInsecureSkipVerifyTLS determines if a TLS Certificate will be checked
func WithInsecureSkipVerifyTLS(insecureSkipVerifyTLS bool) Option {
	return func(opts *options) {
		opts.insecureSkipVerifyTLS = insecureSkipVerifyTLS
	}
}

// WithTLSClientConfig sets the client auth with the provided credentials.
func WithTLSClientConfig(certFile, keyFile, caFile string) Option {
	return func(opts *options) {
		opts.certFile = certFile
		opts.keyFile = keyFile
		opts.caFile = caFile
	}
}

// WithServerName sets the TLS server name used to verify the repository certificate.
func WithServerName(name string) Option {
	return func(opts *options) {
		opts.serverName = name
	}
}

// WithTimeout sets the timeout for requests
func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// WithTransport sets the http.Transport to allow overwriting the HTTPTransport default.
func WithTransport(transport *http.Transport) Option {
	return func(opts *options) {
		opts.transport = transport
	}
}

// Constructor is the function for every transport which creates a specific
// instance according to the configuration.
type Constructor func(options ...Option) (Transport, error)

// Provider represents any transport and the schemes that it supports.
type Provider struct {
	Schemes []string
	New     Constructor
}

// Provides returns true if the given scheme is supported by this Provider.
func (p Provider) Provides(scheme string) bool {
	return slices.Contains(p.Schemes, scheme)
}

// Providers is a collection of Provider objects.
type Providers []Provider

// ByScheme builds a Transport for the given scheme.
//
// If no provider handles this scheme, this will return an error.
func (p Providers) ByScheme(scheme string, options ...Option) (Transport, error) {
	for _, pp := range p {
		if pp.Provides(scheme) {
			return pp.New(options...)
		}
	}
	return nil, errors.Errorf("scheme %q not supported", scheme)
}

var defaultOptions = []Option{WithTimeout(time.Second * DefaultHTTPTimeout)}

// All returns the built-in providers. extraOpts are applied after the
// defaults and after the options passed to ByScheme.
func All(extraOpts ...Option) Providers {
	return Providers{
		Provider{
			Schemes: []string{"http", "https"},
			New: func(options ...Option) (Transport, error) {
				opts := append(append([]Option{}, defaultOptions...), options...)
				return NewHTTPTransport(append(opts, extraOpts...)...)
			},
		},
	}
}
