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
	"fmt"

	"github.com/pkg/errors"
)

// ErrClientClosed is returned by every operation on a closed Client.
var ErrClientClosed = errors.New("repository client is closed")

// TransportError is a network-level failure, or a download that failed
// validation in FetchFullyAndValidate.
type TransportError struct {
	Op  string
	URL string
	// StatusCode is set when the failure is a validation of a completed response.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Op, e.URL, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseError is an HTTP response outside the statuses an operation can
// interpret, e.g. a 503 during an existence check.
type ResponseError struct {
	Op         string
	URL        string
	StatusCode int
	Reason     string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Op, e.URL, e.StatusCode, e.Reason)
}

// MetadataParseError means the metadata document was found but is not
// well-formed. It is distinct from transport failures so that "not found"
// and "found but corrupt" can be told apart.
type MetadataParseError struct {
	URL string
	Err error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("malformed repository metadata at %s: %s", e.URL, e.Err)
}

func (e *MetadataParseError) Unwrap() error { return e.Err }

// errEmptyArtifact and errNonSuccess are the validation causes used by
// FetchFullyAndValidate.
var (
	errNonSuccess    = errors.New("non-success status")
	errEmptyArtifact = errors.New("empty artifact")
)

// IsNonSuccess reports whether err is a download validation failure caused by
// the response status.
func IsNonSuccess(err error) bool {
	return errors.Is(err, errNonSuccess)
}

// IsEmptyArtifact reports whether err is a download validation failure
// caused by an empty body.
func IsEmptyArtifact(err error) bool {
	return errors.Is(err, errEmptyArtifact)
}
