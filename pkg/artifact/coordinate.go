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
Package artifact describes artifact coordinates and the repository layout
used to turn them into storage paths.

A coordinate maps onto the conventional repository layout:

	org.example:lib:1.0                -> org/example/lib/1.0/lib-1.0.jar
	org.example:lib:jar:sources:1.0    -> org/example/lib/1.0/lib-1.0-sources.jar
*/
package artifact

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DefaultExtension is used by ParseCoordinate when no extension is given.
const DefaultExtension = "jar"

// SnapshotQualifier marks a moving development version.
const SnapshotQualifier = "SNAPSHOT"

// ErrInvalidIdentifier is the cause of every InvalidIdentifierError.
var ErrInvalidIdentifier = errors.New("invalid artifact identifier")

// timestamped snapshot versions look like 1.0-20200101.123456-7
var timestampedSnapshot = regexp.MustCompile(`^(.*)-(\d{8}\.\d{6})-(\d+)$`)

// Coordinate identifies an artifact within a repository.
//
// Coordinates are values: copy them freely, never mutate a shared one.
type Coordinate struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Classifier string `json:"classifier,omitempty"`
	Extension  string `json:"extension"`
}

// InvalidIdentifierError reports the coordinate fields that failed validation.
type InvalidIdentifierError struct {
	// ID is the coordinate as the caller wrote it.
	ID  string
	Err error
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidIdentifier, e.ID, e.Err)
}

// Unwrap returns ErrInvalidIdentifier so callers can use errors.Is.
func (e *InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }

// Validate checks that every required field is set.
//
// All missing fields are reported at once.
func (c Coordinate) Validate() error {
	var result *multierror.Error
	required := []struct {
		name  string
		value string
	}{
		{"groupId", c.GroupID},
		{"artifactId", c.ArtifactID},
		{"version", c.Version},
		{"extension", c.Extension},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			result = multierror.Append(result, errors.Errorf("%s is required", f.name))
		}
	}
	if strings.Contains(c.ArtifactID, "/") {
		result = multierror.Append(result, errors.New("artifactId must not contain '/'"))
	}
	if result != nil {
		result.ErrorFormat = joinErrors
		return &InvalidIdentifierError{ID: c.String(), Err: result}
	}
	return nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// IsSnapshot reports whether the coordinate points at a snapshot build,
// either the moving X-SNAPSHOT version or a timestamped one.
func (c Coordinate) IsSnapshot() bool {
	return strings.HasSuffix(c.Version, "-"+SnapshotQualifier) || timestampedSnapshot.MatchString(c.Version)
}

// BaseVersion returns the version used for the version directory.
//
// A timestamped snapshot such as 1.0-20200101.123456-7 lives under the
// 1.0-SNAPSHOT directory. Every other version is returned unchanged.
func (c Coordinate) BaseVersion() string {
	if m := timestampedSnapshot.FindStringSubmatch(c.Version); m != nil {
		return m[1] + "-" + SnapshotQualifier
	}
	return c.Version
}

// String formats the coordinate as groupId:artifactId[:extension[:classifier]]:version.
func (c Coordinate) String() string {
	parts := []string{c.GroupID, c.ArtifactID}
	if c.Classifier != "" {
		parts = append(parts, c.Extension, c.Classifier)
	} else if c.Extension != "" && c.Extension != DefaultExtension {
		parts = append(parts, c.Extension)
	}
	return strings.Join(append(parts, c.Version), ":")
}

// ParseCoordinate parses groupId:artifactId[:extension[:classifier]]:version.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var c Coordinate
	switch len(parts) {
	case 3:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2], Extension: DefaultExtension}
	case 4:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Extension: parts[2], Version: parts[3]}
	case 5:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Extension: parts[2], Classifier: parts[3], Version: parts[4]}
	default:
		return Coordinate{}, &InvalidIdentifierError{
			ID:  s,
			Err: errors.New("expected groupId:artifactId[:extension[:classifier]]:version"),
		}
	}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}
