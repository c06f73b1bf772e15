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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseContentRange parses a Content-Range header value such as
// "bytes 100-199/1000". total is -1 when the server does not know it.
func ParseContentRange(header string) (start, end, total int64, err error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes ")
	if !ok {
		return 0, 0, 0, errors.Errorf("invalid Content-Range %q: unsupported unit", header)
	}
	rng, size, ok := strings.Cut(spec, "/")
	if !ok {
		return 0, 0, 0, errors.Errorf("invalid Content-Range %q", header)
	}
	first, last, ok := strings.Cut(rng, "-")
	if !ok {
		return 0, 0, 0, errors.Errorf("invalid Content-Range %q", header)
	}

	if start, err = strconv.ParseInt(first, 10, 64); err != nil {
		return 0, 0, 0, errors.Wrapf(err, "invalid Content-Range %q: start", header)
	}
	if end, err = strconv.ParseInt(last, 10, 64); err != nil {
		return 0, 0, 0, errors.Wrapf(err, "invalid Content-Range %q: end", header)
	}
	if end < start {
		return 0, 0, 0, errors.Errorf("invalid Content-Range %q: end before start", header)
	}

	if size == "*" {
		return start, end, -1, nil
	}
	if total, err = strconv.ParseInt(size, 10, 64); err != nil {
		return 0, 0, 0, errors.Wrapf(err, "invalid Content-Range %q: total", header)
	}
	return start, end, total, nil
}

// ParseUnsatisfiedRange parses the "bytes */1000" form sent with a 416
// answer and returns the complete length.
func ParseUnsatisfiedRange(header string) (int64, error) {
	size, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes */")
	if !ok {
		return 0, errors.Errorf("invalid Content-Range %q: expected bytes */length", header)
	}
	total, err := strconv.ParseInt(size, 10, 64)
	if err != nil || total < 0 {
		return 0, errors.Errorf("invalid Content-Range %q: length", header)
	}
	return total, nil
}
