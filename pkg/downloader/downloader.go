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
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"strongbox.io/client/internal/logging"
	"strongbox.io/client/pkg/repo"
)

// partSuffix marks an incomplete transfer.
const partSuffix = ".part"

// VerificationStrategy describes a strategy for determining whether to verify an artifact.
type VerificationStrategy int

const (
	// VerifyNever will skip all verification of an artifact.
	VerifyNever VerificationStrategy = iota
	// VerifyIfPossible verifies when a checksum is published and only warns
	// when none is. A published checksum that does not match is still an error.
	VerifyIfPossible
	// VerifyAlways fails when no checksum is published or it does not match.
	VerifyAlways
)

// Downloader handles downloading an artifact to disk.
//
// It is capable of performing checksum verification as well.
type Downloader struct {
	logging.LogHolder

	// Client performs the requests.
	Client *repo.Client
	// Out is the location to write warning and info messages.
	Out io.Writer
	// Verify indicates what verification strategy to use.
	Verify VerificationStrategy
}

// DownloadTo retrieves the resource at path into the file dest.
//
// An existing dest + ".part" is resumed. If Verify is VerifyNever the
// returned Verification is nil.
func (d *Downloader) DownloadTo(ctx context.Context, path, dest string) (string, *Verification, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", nil, err
	}
	part := dest + partSuffix

	n, err := d.transfer(ctx, path, part)
	if err != nil {
		return "", nil, err
	}
	d.Logger().Debug("transfer complete", "path", path, "dest", dest, "bytes", n)

	var ver *Verification
	if d.Verify > VerifyNever {
		ver, err = d.verify(ctx, path, part)
		if err != nil {
			// Start over next time.
			os.Remove(part)
			return "", ver, err
		}
	}

	if err := os.Rename(part, dest); err != nil {
		return "", ver, err
	}
	return dest, ver, nil
}

// transfer completes part and returns its final size.
func (d *Downloader) transfer(ctx context.Context, path, part string) (int64, error) {
	var offset int64
	if fi, err := os.Stat(part); err == nil {
		offset = fi.Size()
	}

	// A second pass only happens when the server cannot continue the
	// existing part file and the transfer starts again from zero.
	for pass := 0; pass < 2; pass++ {
		res, err := d.Client.Fetch(ctx, path, offset)
		if err != nil {
			return 0, err
		}

		next, err := d.accept(res, path, offset)
		if err != nil {
			res.Body.Close()
			return 0, err
		}
		switch next {
		case resumeRestart:
			res.Body.Close()
			if err := os.Remove(part); err != nil && !os.IsNotExist(err) {
				return 0, err
			}
			offset = 0
			continue
		case resumeComplete:
			res.Body.Close()
			d.Logger().Debug("partial file is already complete", "path", path, "bytes", offset)
			return offset, nil
		}

		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if res.StatusCode == http.StatusPartialContent {
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			d.Logger().Debug("resuming transfer", "path", path, "offset", offset)
		} else {
			offset = 0
		}
		written, err := writeBody(part, flags, res.Body)
		res.Body.Close()
		if err != nil {
			return 0, &repo.TransportError{Op: "download", URL: d.Client.ResourceURL(path), Err: err}
		}
		return offset + written, nil
	}
	return 0, errors.Errorf("could not resume %s", d.Client.ResourceURL(path))
}

// resumeAction is what transfer does with a fetch answer.
type resumeAction int

const (
	// resumeWrite writes the body, appending for 206 and truncating for 200.
	resumeWrite resumeAction = iota
	// resumeRestart discards the part file and fetches from zero.
	resumeRestart
	// resumeComplete keeps the part file as is; it already holds every byte.
	resumeComplete
)

// accept decides what to do with a fetch answer.
func (d *Downloader) accept(res *repo.FetchResult, path string, offset int64) (resumeAction, error) {
	switch res.StatusCode {
	case http.StatusOK:
		return resumeWrite, nil
	case http.StatusPartialContent:
		start, _, _, err := ParseContentRange(res.Header.Get("Content-Range"))
		if err != nil || start != offset {
			d.Logger().Debug("server resumed at an unexpected offset", "path", path, "offset", offset, "content-range", res.Header.Get("Content-Range"))
			return resumeRestart, nil
		}
		return resumeWrite, nil
	case http.StatusRequestedRangeNotSatisfiable:
		if offset > 0 {
			if total, err := ParseUnsatisfiedRange(res.Header.Get("Content-Range")); err == nil && total == offset {
				return resumeComplete, nil
			}
			d.Logger().Debug("partial file is not a prefix of the artifact", "path", path, "offset", offset)
			return resumeRestart, nil
		}
	}
	return resumeWrite, &repo.ResponseError{
		Op:         "download",
		URL:        d.Client.ResourceURL(path),
		StatusCode: res.StatusCode,
		Reason:     http.StatusText(res.StatusCode),
	}
}

func writeBody(name string, flags int, body io.Reader) (int64, error) {
	f, err := os.OpenFile(name, flags, 0644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (d *Downloader) warn(format string, args ...interface{}) {
	if d.Out == nil {
		return
	}
	fmt.Fprintf(d.Out, "WARNING: "+format+"\n", args...)
}
