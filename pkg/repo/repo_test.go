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

package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

const testRepositoriesFile = "testdata/repositories.yaml"

func TestFile(t *testing.T) {
	rf := NewFile()
	rf.Add(
		&Entry{
			Name:         "releases",
			URL:          "https://repo.example.com",
			StorageID:    "storage0",
			RepositoryID: "releases",
		},
		&Entry{
			Name:         "snapshots",
			URL:          "https://repo.example.com",
			StorageID:    "storage0",
			RepositoryID: "snapshots",
		},
	)

	if len(rf.Repositories) != 2 {
		t.Fatal("Expected 2 repositories")
	}

	if rf.Has("nosuchrepo") {
		t.Error("Found nonexistent repo")
	}
	if !rf.Has("snapshots") {
		t.Error("snapshots repo is missing")
	}

	releases := rf.Get("releases")
	if releases == nil {
		t.Fatal("releases repo is missing")
	}
	if releases.Location() != (Location{StorageID: "storage0", RepositoryID: "releases"}) {
		t.Errorf("Wrong location for releases: %+v", releases.Location())
	}
}

func TestLoadFile(t *testing.T) {
	repofile, err := LoadFile(testRepositoriesFile)
	if err != nil {
		t.Fatalf("%q could not be loaded: %s", testRepositoriesFile, err)
	}

	if len(repofile.Repositories) != 2 {
		t.Fatalf("Unexpected repo data: %#v", repofile.Repositories)
	}

	snapshots := repofile.Get("snapshots")
	if snapshots == nil {
		t.Fatal("snapshots repo is missing")
	}
	creds := snapshots.Credentials()
	if !creds.IsSet() || creds.Username != "deployer" || creds.Password != "secret" {
		t.Errorf("Unexpected credentials %+v", creds)
	}
	if !snapshots.InsecureSkipTLSverify {
		t.Error("Expected insecure_skip_tls_verify to be loaded")
	}
	if repofile.Get("releases").Credentials().IsSet() {
		t.Error("Expected releases to have no credentials")
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(err.Error(), "couldn't load repositories file") {
		t.Errorf("unexpected error %q", err)
	}
	if !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("expected the cause to be a not-exist error, got %v", err)
	}
}

func TestUpdateRepository(t *testing.T) {
	sampleRepository := NewFile()
	sampleRepository.Add(&Entry{Name: "releases", URL: "https://repo.example.com"})

	newRepoName := "releases"
	sampleRepository.Update(&Entry{Name: newRepoName, URL: "https://mirror.example.com"})

	if len(sampleRepository.Repositories) != 1 {
		t.Fatalf("expected update to replace, got %d repositories", len(sampleRepository.Repositories))
	}
	if got := sampleRepository.Get(newRepoName).URL; got != "https://mirror.example.com" {
		t.Errorf("expected url to be updated, got %s", got)
	}

	sampleRepository.Update(&Entry{Name: "thirdparty", URL: "https://third.example.com"})
	if !sampleRepository.Has("thirdparty") {
		t.Error("expected update to add a missing repository")
	}
}

func TestRemoveRepository(t *testing.T) {
	sampleRepository := NewFile()
	sampleRepository.Add(
		&Entry{Name: "releases", URL: "https://repo.example.com"},
		&Entry{Name: "snapshots", URL: "https://repo.example.com"},
	)

	removeRepository := "releases"
	found := sampleRepository.Remove(removeRepository)
	if !found {
		t.Errorf("expected repository %s not found", removeRepository)
	}

	if sampleRepository.Has(removeRepository) {
		t.Errorf("%s was not successfully removed", removeRepository)
	}
	if !sampleRepository.Has("snapshots") {
		t.Errorf("snapshots was removed by mistake")
	}
	if sampleRepository.Remove("nosuchrepo") {
		t.Error("expected removing an unknown repository to report false")
	}
}

func TestWriteFile(t *testing.T) {
	sampleRepository := NewFile()
	sampleRepository.Add(
		&Entry{Name: "releases", URL: "https://repo.example.com", StorageID: "storage0", RepositoryID: "releases"},
	)

	file := filepath.Join(t.TempDir(), "nested", "repositories.yaml")
	if err := sampleRepository.WriteFile(file, 0600); err != nil {
		t.Fatalf("failed to write file: %s", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %s", info.Mode())
	}

	repos, err := LoadFile(file)
	if err != nil {
		t.Fatalf("failed to load file: %s", err)
	}
	if got := repos.Get("releases"); got == nil || got.RepositoryID != "releases" {
		t.Errorf("expected entry to round trip, got %#v", got)
	}
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		entry Entry
		ok    bool
	}{
		{Entry{Name: "ok", URL: "https://repo.example.com"}, true},
		{Entry{Name: "port", URL: "http://127.0.0.1:48080/"}, true},
		{Entry{URL: "https://repo.example.com"}, false},
		{Entry{Name: "noscheme", URL: "repo.example.com"}, false},
		{Entry{Name: "empty"}, false},
		{Entry{Name: ".", URL: "https://repo.example.com"}, false},
		{Entry{Name: "..", URL: "https://repo.example.com"}, false},
		{Entry{Name: "a/b", URL: "https://repo.example.com"}, false},
		{Entry{Name: `a\b`, URL: "https://repo.example.com"}, false},
		{Entry{Name: "...", URL: "https://repo.example.com"}, true},
		{Entry{Name: "v1.2", URL: "https://repo.example.com"}, true},
	}
	for _, tt := range tests {
		err := tt.entry.Validate()
		if tt.ok && err != nil {
			t.Errorf("%+v: unexpected error %s", tt.entry, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%+v: expected an error", tt.entry)
		}
	}
}

func TestEntryNewClient(t *testing.T) {
	e := &Entry{Name: "releases", URL: "https://repo.example.com//", Username: "u", Password: "p"}
	c, err := e.NewClient()
	if err != nil {
		t.Fatal(err)
	}
	if c.BaseURL() != "https://repo.example.com" {
		t.Errorf("expected trailing slashes to be trimmed, got %s", c.BaseURL())
	}
	if c.credentials != e.Credentials() {
		t.Errorf("expected entry credentials to be used, got %+v", c.credentials)
	}

	if _, err := (&Entry{Name: "bad", URL: "::"}).NewClient(); err == nil {
		t.Error("expected an invalid entry to be rejected")
	}
}
