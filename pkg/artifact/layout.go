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

package artifact

import (
	"strings"

	"github.com/pkg/errors"
)

// MetadataFile is the name of the repository metadata document.
const MetadataFile = "maven-metadata.xml"

// ResolvePath maps a coordinate onto its repository-relative path:
//
//	group/with/slashes/name/version/name-version[-classifier].extension
//
// The separators and segment order must not change; repository servers
// rely on this exact layout.
func ResolvePath(c Coordinate) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(groupPath(c.GroupID))
	sb.WriteByte('/')
	sb.WriteString(c.ArtifactID)
	sb.WriteByte('/')
	sb.WriteString(c.BaseVersion())
	sb.WriteByte('/')
	sb.WriteString(c.ArtifactID)
	sb.WriteByte('-')
	sb.WriteString(c.Version)
	if c.Classifier != "" {
		sb.WriteByte('-')
		sb.WriteString(c.Classifier)
	}
	sb.WriteByte('.')
	sb.WriteString(c.Extension)
	return sb.String(), nil
}

// Path is ResolvePath for callers that already validated the coordinate.
// It returns an empty string for invalid coordinates.
func (c Coordinate) Path() string {
	p, err := ResolvePath(c)
	if err != nil {
		return ""
	}
	return p
}

// MetadataPath returns the path of the metadata document for group and
// artifact. With a version it returns the version-level document used for
// snapshot resolution; with an empty artifact it returns the group-level one.
func MetadataPath(group, artifact, version string) (string, error) {
	if strings.TrimSpace(group) == "" {
		return "", &InvalidIdentifierError{ID: group, Err: errors.New("groupId is required")}
	}
	segments := []string{groupPath(group)}
	if artifact != "" {
		segments = append(segments, artifact)
		if version != "" {
			segments = append(segments, version)
		}
	} else if version != "" {
		return "", &InvalidIdentifierError{
			ID:  group + "::" + version,
			Err: errors.New("artifactId is required when version is set"),
		}
	}
	return strings.Join(append(segments, MetadataFile), "/"), nil
}

// ChecksumPath returns the path of the checksum sidecar for p, e.g.
// lib-1.0.jar.sha256.
func ChecksumPath(p, algorithm string) string {
	return p + "." + strings.ToLower(algorithm)
}

func groupPath(group string) string {
	return strings.ReplaceAll(group, ".", "/")
}
