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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"strongbox.io/client/internal/fileutil"
	"strongbox.io/client/pkg/getter"
)

// APIVersionV1 is the v1 API version for the repositories file.
const APIVersionV1 = "v1"

// ErrNoRepositories indicates that a repositories file has no entries.
var ErrNoRepositories = errors.New("no repositories found. You must add one before proceeding")

// Entry is a named repository server and the location inside it that
// artifact coordinates are resolved against.
type Entry struct {
	Name                  string `json:"name"`
	URL                   string `json:"url"`
	StorageID             string `json:"storageId,omitempty"`
	RepositoryID          string `json:"repositoryId,omitempty"`
	Username              string `json:"username,omitempty"`
	Password              string `json:"password,omitempty"`
	CertFile              string `json:"certFile,omitempty"`
	KeyFile               string `json:"keyFile,omitempty"`
	CAFile                string `json:"caFile,omitempty"`
	InsecureSkipTLSverify bool   `json:"insecure_skip_tls_verify,omitempty"`
}

// Validate checks that the entry can be used to build a client.
func (e *Entry) Validate() error {
	if e.Name == "" {
		return errors.New("repository name is required")
	}
	// The name doubles as a directory below the repository cache.
	if e.Name == "." || e.Name == ".." || strings.ContainsAny(e.Name, `/\`) {
		return errors.Errorf("repository name %q is not allowed: it must not be '.' or '..' or contain '/' or '\\'", e.Name)
	}
	if !govalidator.IsRequestURL(e.URL) {
		return errors.Errorf("repository %q: %q is not a valid URL", e.Name, e.URL)
	}
	return nil
}

// Location returns the storage and repository the entry points at.
func (e *Entry) Location() Location {
	return Location{StorageID: e.StorageID, RepositoryID: e.RepositoryID}
}

// Credentials returns the entry's basic auth credentials.
func (e *Entry) Credentials() getter.Credentials {
	return getter.Credentials{Username: e.Username, Password: e.Password}
}

// GetterOptions returns the transport options implied by the entry.
func (e *Entry) GetterOptions() []getter.Option {
	return []getter.Option{
		getter.WithTLSClientConfig(e.CertFile, e.KeyFile, e.CAFile),
		getter.WithInsecureSkipVerifyTLS(e.InsecureSkipTLSverify),
	}
}

// NewClient builds a Client for the entry's server.
func (e *Entry) NewClient(opts ...ClientOption) (*Client, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	base := []ClientOption{
		WithCredentials(e.Credentials()),
		WithGetterOptions(e.GetterOptions()...),
	}
	return NewClient(e.URL, append(base, opts...)...)
}

// File represents the repositories.yaml file
type File struct {
	APIVersion   string    `json:"apiVersion"`
	Generated    time.Time `json:"generated"`
	Repositories []*Entry  `json:"repositories"`
}

// NewFile generates an empty repositories file.
//
// Generated and APIVersion are automatically set.
func NewFile() *File {
	return &File{
		APIVersion:   APIVersionV1,
		Generated:    time.Now(),
		Repositories: []*Entry{},
	}
}

// LoadFile takes a file at the given path and returns a File object
func LoadFile(path string) (*File, error) {
	r := new(File)
	b, err := os.ReadFile(path)
	if err != nil {
		return r, errors.Wrapf(err, "couldn't load repositories file (%s)", path)
	}

	if err := yaml.Unmarshal(b, r); err != nil {
		return r, errors.Wrapf(err, "couldn't parse repositories file (%s)", path)
	}
	return r, nil
}

// Add adds one or more repo entries to a repo file.
func (r *File) Add(re ...*Entry) {
	r.Repositories = append(r.Repositories, re...)
}

// Update attempts to replace one or more repo entries in a repo file. If an
// entry with the same name doesn't exist in the repo file it will add it.
func (r *File) Update(re ...*Entry) {
	for _, target := range re {
		r.update(target)
	}
}

func (r *File) update(e *Entry) {
	for j, repo := range r.Repositories {
		if repo.Name == e.Name {
			r.Repositories[j] = e
			return
		}
	}
	r.Add(e)
}

// Has returns true if the given name is already a repository name.
func (r *File) Has(name string) bool {
	return r.Get(name) != nil
}

// Get returns the entry with the given name if it exists, otherwise returns nil
func (r *File) Get(name string) *Entry {
	for _, entry := range r.Repositories {
		if entry.Name == name {
			return entry
		}
	}
	return nil
}

// Remove removes the entry from the list of repositories.
func (r *File) Remove(name string) bool {
	cp := []*Entry{}
	found := false
	for _, rf := range r.Repositories {
		if rf == nil {
			continue
		}
		if rf.Name == name {
			found = true
			continue
		}
		cp = append(cp, rf)
	}
	r.Repositories = cp
	return found
}

// WriteFile atomically writes a repositories file to the given path,
// creating its directory when needed.
func (r *File) WriteFile(path string, perm os.FileMode) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(path, bytes.NewReader(data), perm)
}
