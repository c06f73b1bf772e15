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

package getter

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"strongbox.io/client/internal/tlsutil"
	"strongbox.io/client/internal/version"
)

// HTTPTransport is the default HTTP(/S) backend.
type HTTPTransport struct {
	opts      options
	client    *http.Client
	transport *http.Transport

	closeOnce sync.Once
	closed    atomic.Bool
}

// NewHTTPTransport constructs a valid http/https Transport.
func NewHTTPTransport(options ...Option) (Transport, error) {
	t := &HTTPTransport{}
	for _, opt := range options {
		opt(&t.opts)
	}

	transport, err := t.newTransport()
	if err != nil {
		return nil, err
	}
	t.transport = transport
	t.client = &http.Client{
		Transport: transport,
		Timeout:   t.opts.timeout,
	}
	return t, nil
}

func (t *HTTPTransport) newTransport() (*http.Transport, error) {
	if t.opts.transport != nil {
		return t.opts.transport, nil
	}

	transport := &http.Transport{
		// Ranges are byte offsets into the stored artifact, so never let
		// the transport decompress transparently.
		DisableCompression: true,
		Proxy:              http.ProxyFromEnvironment,
		TLSClientConfig:    &tls.Config{MinVersion: tls.VersionTLS12},
	}

	needsCustomTLS := (t.opts.certFile != "" && t.opts.keyFile != "") ||
		t.opts.caFile != "" || t.opts.insecureSkipVerifyTLS || t.opts.serverName != ""
	if needsCustomTLS {
		tlsConf, err := tlsutil.NewTLSConfig(
			tlsutil.WithInsecureSkipVerify(t.opts.insecureSkipVerifyTLS),
			tlsutil.WithCertKeyPairFiles(t.opts.certFile, t.opts.keyFile),
			tlsutil.WithCAFile(t.opts.caFile),
			tlsutil.WithServerName(t.opts.serverName),
		)
		if err != nil {
			return nil, errors.Wrap(err, "can't create TLS config for client")
		}
		transport.TLSClientConfig = tlsConf
	}
	return transport, nil
}

// Do issues req. The request never carries a body.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, err
	}

	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}

	// Set a client specific user agent so that a repository server can
	// separate these calls from other tools.
	httpReq.Header.Set("User-Agent", version.GetUserAgent())
	if t.opts.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.opts.userAgent)
	}

	if req.Credentials.IsSet() {
		httpReq.SetBasicAuth(req.Credentials.Username, req.Credentials.Password)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// Close drops idle pooled connections. In-flight bodies stay readable.
func (t *HTTPTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		t.transport.CloseIdleConnections()
	})
	return nil
}
