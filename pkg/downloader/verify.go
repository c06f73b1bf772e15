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

package downloader

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"

	"strongbox.io/client/pkg/artifact"
)

// checksumAlgorithms are tried in order; the first published sidecar wins.
var checksumAlgorithms = []digest.Algorithm{digest.SHA256, digest.SHA512}

// maxChecksumSize bounds how much of a sidecar file is read.
const maxChecksumSize = 1024

// ErrChecksumMismatch is the cause of a failed verification.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Verification describes the checksum an artifact was checked against.
type Verification struct {
	// Digest is the published checksum. Empty when none was found.
	Digest   digest.Digest
	Verified bool
}

func (d *Downloader) verify(ctx context.Context, path, file string) (*Verification, error) {
	ver := &Verification{}

	expected, err := d.publishedDigest(ctx, path)
	if err != nil {
		return ver, err
	}
	if expected == "" {
		if d.Verify == VerifyAlways {
			return ver, errors.Errorf("no checksum published for %s", d.Client.ResourceURL(path))
		}
		d.warn("Verification not found for %s", path)
		return ver, nil
	}
	ver.Digest = expected

	f, err := os.Open(file)
	if err != nil {
		return ver, err
	}
	defer f.Close()

	verifier := expected.Verifier()
	if _, err := io.Copy(verifier, f); err != nil {
		return ver, err
	}
	if !verifier.Verified() {
		return ver, errors.Wrapf(ErrChecksumMismatch, "%s does not match %s", path, expected)
	}
	ver.Verified = true
	d.Logger().Debug("checksum verified", "path", path, "digest", expected.String())
	return ver, nil
}

// publishedDigest returns the first checksum sidecar found for path, or ""
// when there is none.
func (d *Downloader) publishedDigest(ctx context.Context, path string) (digest.Digest, error) {
	for _, algo := range checksumAlgorithms {
		sidecar := artifact.ChecksumPath(path, algo.String())
		res, err := d.Client.Fetch(ctx, sidecar, 0)
		if err != nil {
			return "", err
		}
		if res.StatusCode != http.StatusOK {
			res.Body.Close()
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(res.Body, maxChecksumSize))
		res.Body.Close()
		if err != nil {
			return "", errors.Wrapf(err, "reading %s", sidecar)
		}
		return parseChecksum(algo, string(raw))
	}
	return "", nil
}

// parseChecksum accepts both a bare hex digest and the "<hex>  <file>" form.
func parseChecksum(algo digest.Algorithm, content string) (digest.Digest, error) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "", errors.Errorf("empty %s checksum", algo)
	}
	dg := digest.NewDigestFromEncoded(algo, strings.ToLower(fields[0]))
	if err := dg.Validate(); err != nil {
		return "", errors.Wrapf(err, "invalid %s checksum %q", algo, fields[0])
	}
	return dg, nil
}
