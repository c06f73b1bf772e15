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

// Package repotest provides an in-process artifact repository server for tests.
package repotest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/repo"
)

// Default location artifacts are published to by AddArtifact callers that do
// not care about the layout.
const (
	StorageID    = "storage0"
	RepositoryID = "releases"
)

// RecordedRequest is what the server saw of one request.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
}

// Server is a repository server for testing. Files under its docroot are
// served with range support.
type Server struct {
	docroot    string
	srv        *httptest.Server
	middleware func(http.Handler) http.Handler

	mu       sync.Mutex
	requests []RecordedRequest
	statuses map[string]int
	username string
	password string
}

// ServerOption configures a Server before it starts.
type ServerOption func(*Server)

// WithBasicAuth rejects requests that do not carry these credentials.
func WithBasicAuth(username, password string) ServerOption {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithMiddleware injects middleware in front of the file server.
func WithMiddleware(middleware func(http.Handler) http.Handler) ServerOption {
	return func(s *Server) {
		s.middleware = middleware
	}
}

// NewTempServer starts a server with an empty docroot in a temp dir. The
// server is stopped when the test ends.
func NewTempServer(t *testing.T, options ...ServerOption) *Server {
	t.Helper()
	srv := NewServer(t.TempDir(), options...)
	t.Cleanup(srv.Stop)
	return srv
}

// NewServer starts a server serving files off of docroot. docroot should be
// a temp dir managed by the caller.
func NewServer(docroot string, options ...ServerOption) *Server {
	root, err := filepath.Abs(docroot)
	if err != nil {
		panic(err)
	}
	srv := &Server{
		docroot:  root,
		statuses: map[string]int{},
	}
	for _, opt := range options {
		opt(srv)
	}
	srv.Start()
	return srv
}

// Start starts the server. NewServer calls it.
func (s *Server) Start() {
	var h http.Handler = http.FileServer(http.Dir(s.docroot))
	if s.middleware != nil {
		h = s.middleware(h)
	}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
		status, overridden := s.statuses[r.URL.Path]
		s.mu.Unlock()

		if s.username != "" || s.password != "" {
			username, password, ok := r.BasicAuth()
			if !ok || username != s.username || password != s.password {
				w.Header().Set("WWW-Authenticate", `Basic realm="strongbox"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		if overridden {
			w.WriteHeader(status)
			return
		}
		h.ServeHTTP(w, r)
	}))
}

// Stop stops the server and closes all connections.
func (s *Server) Stop() {
	s.srv.Close()
}

// URL returns the URL of the server, e.g. http://127.0.0.1:1776
func (s *Server) URL() string {
	return s.srv.URL
}

// Root gets the docroot for the server.
func (s *Server) Root() string {
	return s.docroot
}

// AddFile publishes data at rel, relative to the server root.
func (s *Server) AddFile(rel string, data []byte) error {
	dest := filepath.Join(s.docroot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}

// AddArtifact publishes data for coord inside loc and returns its path
// relative to the server root.
func (s *Server) AddArtifact(loc repo.Location, coord artifact.Coordinate, data []byte) (string, error) {
	p, err := artifact.ResolvePath(coord)
	if err != nil {
		return "", err
	}
	rel := loc.ResourcePath(p)
	return rel, s.AddFile(rel, data)
}

// SetStatus makes every request for the URL path answer with code and no body.
func (s *Server) SetStatus(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = code
}

// Requests returns the requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Entry returns a repositories file entry named name that points at the
// server and the default location.
func (s *Server) Entry(name string) *repo.Entry {
	e := &repo.Entry{
		Name:         name,
		URL:          s.URL(),
		StorageID:    StorageID,
		RepositoryID: RepositoryID,
	}
	if s.username != "" {
		e.Username = s.username
		e.Password = s.password
	}
	return e
}

// WriteRepositoriesFile writes a repositories file at path holding a single
// entry named "test" for this server.
func (s *Server) WriteRepositoriesFile(path string) error {
	f := repo.NewFile()
	f.Add(s.Entry("test"))
	return f.WriteFile(path, 0600)
}
