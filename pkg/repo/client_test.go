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

package repo_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/phayes/freeport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/getter"
	"strongbox.io/client/pkg/repo"
	"strongbox.io/client/pkg/repo/repotest"
)

var (
	testCoord = artifact.Coordinate{GroupID: "org.example", ArtifactID: "lib", Version: "1.0", Extension: "jar"}
	testLoc   = repo.Location{StorageID: repotest.StorageID, RepositoryID: repotest.RepositoryID}
)

const testPayload = "0123456789abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopqrstuvwxyz"

// counter records how often transports are built and released.
type counter struct {
	created atomic.Int32
	closed  atomic.Int32
}

type countingTransport struct {
	getter.Transport
	c *counter
}

func (t *countingTransport) Close() error {
	t.c.closed.Add(1)
	return t.Transport.Close()
}

func (c *counter) constructor() getter.Constructor {
	return func(options ...getter.Option) (getter.Transport, error) {
		c.created.Add(1)
		tr, err := getter.NewHTTPTransport(options...)
		if err != nil {
			return nil, err
		}
		return &countingTransport{Transport: tr, c: c}, nil
	}
}

func newTestClient(t *testing.T, srv *repotest.Server, opts ...repo.ClientOption) *repo.Client {
	t.Helper()
	c, err := repo.NewClient(srv.URL(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func publish(t *testing.T, srv *repotest.Server, data string) string {
	t.Helper()
	p, err := srv.AddArtifact(testLoc, testCoord, []byte(data))
	require.NoError(t, err)
	return p
}

func TestNewClient(t *testing.T) {
	c, err := repo.NewClient("https://repo.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://repo.example.com", c.BaseURL())
	assert.Equal(t, "https://repo.example.com/a/b", c.ResourceURL("a/b"))
	assert.Equal(t, "https://repo.example.com/a/b", c.ResourceURL("/a/b"))

	u, err := c.URLForArtifact(testCoord, testLoc)
	require.NoError(t, err)
	assert.Equal(t, "https://repo.example.com/storages/storage0/releases/org/example/lib/1.0/lib-1.0.jar", u)

	u, err = c.URLForArtifact(testCoord, repo.Location{BaseURL: "http://mirror:8080/", StorageID: "s", RepositoryID: "r"})
	require.NoError(t, err)
	assert.Equal(t, "http://mirror:8080/storages/s/r/org/example/lib/1.0/lib-1.0.jar", u)

	_, err = c.URLForArtifact(testCoord, repo.Location{StorageID: "s"})
	assert.Error(t, err)

	for _, bad := range []string{"", "repo.example.com", "://nope"} {
		_, err := repo.NewClient(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestUnsupportedScheme(t *testing.T) {
	c, err := repo.NewClient("ftp://repo.example.com")
	require.NoError(t, err)

	_, err = c.Exists(context.Background(), "anything")
	var terr *repo.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, err.Error(), "not supported")
}

func TestExists(t *testing.T) {
	srv := repotest.NewTempServer(t)
	p := publish(t, srv, testPayload)
	srv.SetStatus("/broken", http.StatusInternalServerError)

	c := newTestClient(t, srv)
	ctx := context.Background()

	ok, err := c.Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, "/storages/storage0/releases/missing.jar")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Exists(ctx, "broken")
	require.NoError(t, err, "a non-200 status is not an error for Exists")
	assert.False(t, ok)

	for _, r := range srv.Requests() {
		assert.Equal(t, http.MethodGet, r.Method)
	}
}

func TestArtifactExists(t *testing.T) {
	srv := repotest.NewTempServer(t)
	publish(t, srv, testPayload)
	c := newTestClient(t, srv)
	ctx := context.Background()

	ok, err := c.ArtifactExists(ctx, testCoord, testLoc)
	require.NoError(t, err)
	assert.True(t, ok)

	missing := testCoord
	missing.Version = "9.9"
	ok, err = c.ArtifactExists(ctx, missing, testLoc)
	require.NoError(t, err)
	assert.False(t, ok)

	u, err := c.URLForArtifact(testCoord, testLoc)
	require.NoError(t, err)
	srv.SetStatus(strings.TrimPrefix(u, srv.URL()), http.StatusInternalServerError)

	ok, err = c.ArtifactExists(ctx, testCoord, testLoc)
	assert.False(t, ok)
	var rerr *repo.ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusInternalServerError, rerr.StatusCode)
	assert.Equal(t, "Internal Server Error", rerr.Reason)
	assert.Equal(t, u, rerr.URL)
	assert.Contains(t, err.Error(), "500")
}

func TestProbeStatus(t *testing.T) {
	srv := repotest.NewTempServer(t)
	c := newTestClient(t, srv)

	u, err := c.URLForArtifact(testCoord, testLoc)
	require.NoError(t, err)
	srv.SetStatus(strings.TrimPrefix(u, srv.URL()), http.StatusServiceUnavailable)

	resp, err := c.ProbeStatus(context.Background(), testCoord, testLoc)
	require.NoError(t, err, "ProbeStatus does not interpret the status")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "Service Unavailable", resp.Reason())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/storages/storage0/releases/org/example/lib/1.0/lib-1.0.jar", reqs[0].Path)
}

func TestInvalidIdentifierMakesNoRequest(t *testing.T) {
	srv := repotest.NewTempServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	bad := artifact.Coordinate{GroupID: "org.example", ArtifactID: "lib"}

	_, err := c.ArtifactExists(ctx, bad, testLoc)
	assert.ErrorIs(t, err, artifact.ErrInvalidIdentifier)

	_, err = c.ProbeStatus(ctx, bad, testLoc)
	assert.ErrorIs(t, err, artifact.ErrInvalidIdentifier)

	err = c.FetchFullyAndValidate(ctx, bad, "releases")
	assert.ErrorIs(t, err, artifact.ErrInvalidIdentifier)

	assert.Empty(t, srv.Requests())
}

func TestFetch(t *testing.T) {
	srv := repotest.NewTempServer(t)
	p := publish(t, srv, testPayload)
	c := newTestClient(t, srv)
	ctx := context.Background()

	res, err := c.Fetch(ctx, p, 0)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, testPayload, string(body))

	res, err = c.Fetch(ctx, p, 100)
	require.NoError(t, err)
	body, err = io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusPartialContent, res.StatusCode)
	assert.Equal(t, testPayload[100:], string(body))
	assert.Equal(t, fmt.Sprintf("bytes 100-%d/%d", len(testPayload)-1, len(testPayload)), res.Header.Get("Content-Range"))

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Header.Get("Range"), "offset 0 must not send a Range header")
	assert.Equal(t, "bytes=100-", reqs[1].Header.Get("Range"))
	assert.Empty(t, reqs[1].Header.Get("If-Range"))
	for _, r := range reqs {
		assert.Equal(t, http.MethodGet, r.Method)
	}
}

func TestFetchNegativeOffsetIsPlainGet(t *testing.T) {
	srv := repotest.NewTempServer(t)
	p := publish(t, srv, testPayload)
	c := newTestClient(t, srv)

	res, err := c.Fetch(context.Background(), p, -5)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, srv.Requests()[0].Header.Get("Range"))
}

func TestFetchDoesNotVerifyRange(t *testing.T) {
	// A server without range support answers with the whole body.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, testPayload)
	}))
	defer srv.Close()

	c, err := repo.NewClient(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	res, err := c.Fetch(context.Background(), "artifact.jar", 10)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, testPayload, string(body))
}

func TestFetchFullyAndValidate(t *testing.T) {
	srv := repotest.NewTempServer(t)
	p, err := artifact.ResolvePath(testCoord)
	require.NoError(t, err)
	c := newTestClient(t, srv)
	ctx := context.Background()

	big := strings.Repeat("x", 3*4096+17)
	require.NoError(t, srv.AddFile("releases/"+p, []byte(big)))
	require.NoError(t, c.FetchFullyAndValidate(ctx, testCoord, "releases"))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/releases/org/example/lib/1.0/lib-1.0.jar", reqs[0].Path)

	err = c.FetchFullyAndValidate(ctx, testCoord, "snapshots")
	var terr *repo.TransportError
	require.ErrorAs(t, err, &terr)
	assert.True(t, repo.IsNonSuccess(err))
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
	assert.Equal(t, "fetch and validate", terr.Op)

	require.NoError(t, srv.AddFile("empty/"+p, nil))
	err = c.FetchFullyAndValidate(ctx, testCoord, "empty")
	require.ErrorAs(t, err, &terr)
	assert.True(t, repo.IsEmptyArtifact(err))
	assert.Equal(t, http.StatusOK, terr.StatusCode)
	assert.Contains(t, err.Error(), "empty artifact")
}

func TestFetchFullyAndValidateTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "100")
		fmt.Fprint(w, "only ten b")
	}))
	defer srv.Close()

	c, err := repo.NewClient(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	err = c.FetchFullyAndValidate(context.Background(), testCoord, "releases")
	var terr *repo.TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, repo.IsNonSuccess(err))
}

const metadataDoc = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>org.example</groupId>
  <artifactId>lib</artifactId>
  <versioning>
    <release>1.1</release>
    <versions>
      <version>1.0</version>
      <version>1.1</version>
    </versions>
  </versioning>
</metadata>`

func TestRetrieveMetadata(t *testing.T) {
	srv := repotest.NewTempServer(t)
	rel, err := artifact.MetadataPath("org.example", "lib", "")
	require.NoError(t, err)
	mdPath := testLoc.ResourcePath(rel)
	require.NoError(t, srv.AddFile(mdPath, []byte(metadataDoc)))
	c := newTestClient(t, srv)
	ctx := context.Background()

	md, err := c.RetrieveMetadata(ctx, mdPath)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "lib", md.ArtifactID)
	assert.Equal(t, []string{"1.0", "1.1"}, md.Versioning.Versions)
	assert.Len(t, srv.Requests(), 2)
}

func TestRetrieveMetadataAbsent(t *testing.T) {
	srv := repotest.NewTempServer(t)
	c := newTestClient(t, srv)

	md, err := c.RetrieveMetadata(context.Background(), "org/example/missing/maven-metadata.xml")
	assert.NoError(t, err)
	assert.Nil(t, md)
	assert.Len(t, srv.Requests(), 1, "an absent document must not be fetched a second time")
}

func TestRetrieveMetadataMalformed(t *testing.T) {
	srv := repotest.NewTempServer(t)
	docs := map[string]string{
		"unclosed":        "<metadata><versioning>",
		"trailing markup": "<metadata><groupId>org.example</groupId></metadata><<<not xml",
		"second root":     "<metadata><groupId>org.example</groupId></metadata><metadata>",
		"trailing text":   "<metadata><groupId>org.example</groupId></metadata>trailing text",
	}
	c := newTestClient(t, srv)

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			rel := "bad/" + strings.ReplaceAll(name, " ", "-") + "/maven-metadata.xml"
			require.NoError(t, srv.AddFile(rel, []byte(doc)))

			md, err := c.RetrieveMetadata(context.Background(), rel)
			assert.Nil(t, md)
			var perr *repo.MetadataParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, srv.URL()+"/"+rel, perr.URL)

			var terr *repo.TransportError
			assert.False(t, errors.As(err, &terr), "a parse failure is not a transport failure")
		})
	}
}

func TestRetrieveMetadataSecondCallFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, metadataDoc)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := repo.NewClient(srv.URL)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.RetrieveMetadata(context.Background(), "maven-metadata.xml")
	var rerr *repo.ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusBadGateway, rerr.StatusCode)
	assert.Equal(t, "retrieve metadata", rerr.Op)
}

func TestBasicAuth(t *testing.T) {
	srv := repotest.NewTempServer(t, repotest.WithBasicAuth("deployer", "secret"))
	p := publish(t, srv, testPayload)
	ctx := context.Background()

	authed := newTestClient(t, srv, repo.WithCredentials(getter.Credentials{Username: "deployer", Password: "secret"}))
	ok, err := authed.Exists(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, authed.FetchFullyAndValidate(ctx, testCoord, "storages/"+repotest.StorageID+"/"+repotest.RepositoryID))
	res, err := authed.Fetch(ctx, p, 3)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusPartialContent, res.StatusCode)

	for _, r := range srv.Requests() {
		username, password, ok := basicAuth(r.Header)
		assert.True(t, ok, "every request must carry credentials")
		assert.Equal(t, "deployer", username)
		assert.Equal(t, "secret", password)
	}
	srv.ResetRequests()

	half := newTestClient(t, srv, repo.WithCredentials(getter.Credentials{Username: "deployer"}))
	ok, err = half.Exists(ctx, p)
	require.NoError(t, err)
	assert.False(t, ok, "401 is not existence")
	_, err = half.ArtifactExists(ctx, testCoord, testLoc)
	var rerr *repo.ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusUnauthorized, rerr.StatusCode)

	for _, r := range srv.Requests() {
		assert.Empty(t, r.Header.Get("Authorization"))
	}
}

func basicAuth(h http.Header) (string, string, bool) {
	r := &http.Request{Header: h}
	return r.BasicAuth()
}

func TestConnectionRefused(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	url := fmt.Sprintf("http://127.0.0.1:%d", port)
	c, err := repo.NewClient(url)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	_, err = c.Exists(ctx, "anything")
	var terr *repo.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "exists", terr.Op)
	assert.Equal(t, url+"/anything", terr.URL)

	_, err = c.Fetch(ctx, "anything", 10)
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "fetch", terr.Op)

	_, err = c.RetrieveMetadata(ctx, "maven-metadata.xml")
	require.ErrorAs(t, err, &terr)
}

func TestContextCanceled(t *testing.T) {
	srv := repotest.NewTempServer(t)
	c := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Exists(ctx, "anything")
	var terr *repo.TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose(t *testing.T) {
	srv := repotest.NewTempServer(t)
	p := publish(t, srv, testPayload)

	var cnt counter
	c := newTestClient(t, srv, repo.WithTransportConstructor(cnt.constructor()))
	ctx := context.Background()

	_, err := c.Exists(ctx, p)
	require.NoError(t, err)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.EqualValues(t, 1, cnt.created.Load())
	assert.EqualValues(t, 1, cnt.closed.Load(), "transport must be released exactly once")

	_, err = c.Exists(ctx, p)
	assert.ErrorIs(t, err, repo.ErrClientClosed)
	assert.Contains(t, err.Error(), "exists")

	_, err = c.Fetch(ctx, p, 0)
	assert.ErrorIs(t, err, repo.ErrClientClosed)

	_, err = c.ArtifactExists(ctx, testCoord, testLoc)
	assert.ErrorIs(t, err, repo.ErrClientClosed)

	err = c.FetchFullyAndValidate(ctx, testCoord, "releases")
	assert.ErrorIs(t, err, repo.ErrClientClosed)

	_, err = c.RetrieveMetadata(ctx, "maven-metadata.xml")
	assert.ErrorIs(t, err, repo.ErrClientClosed)

	assert.EqualValues(t, 1, cnt.created.Load(), "a closed client must not build a new transport")
}

func TestCloseBeforeUse(t *testing.T) {
	var cnt counter
	c, err := repo.NewClient("http://127.0.0.1:1", repo.WithTransportConstructor(cnt.constructor()))
	require.NoError(t, err)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Zero(t, cnt.created.Load())
	assert.Zero(t, cnt.closed.Load())
}

func TestConcurrentFirstUse(t *testing.T) {
	srv := repotest.NewTempServer(t)
	p := publish(t, srv, testPayload)

	var cnt counter
	c := newTestClient(t, srv, repo.WithTransportConstructor(cnt.constructor()))

	const n = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			var err error
			if i%2 == 0 {
				_, err = c.Exists(context.Background(), p)
			} else {
				_, err = c.ArtifactExists(context.Background(), testCoord, testLoc)
			}
			errs <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, cnt.created.Load(), "exactly one transport must be created")
	assert.Len(t, srv.Requests(), n)
}

func TestTransportConstructorError(t *testing.T) {
	c, err := repo.NewClient("http://127.0.0.1:1", repo.WithTransportConstructor(func(...getter.Option) (getter.Transport, error) {
		return nil, errors.New("boom")
	}))
	require.NoError(t, err)

	_, err = c.Exists(context.Background(), "x")
	var terr *repo.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, err.Error(), "boom")
}
