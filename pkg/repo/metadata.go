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
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"strongbox.io/client/pkg/artifact"
)

// lastUpdatedLayout is the timestamp format of <lastUpdated>.
const lastUpdatedLayout = "20060102150405"

// Metadata is a parsed maven-metadata.xml document.
type Metadata struct {
	XMLName      xml.Name   `xml:"metadata" json:"-"`
	ModelVersion string     `xml:"modelVersion,attr,omitempty" json:"modelVersion,omitempty"`
	GroupID      string     `xml:"groupId" json:"groupId,omitempty"`
	ArtifactID   string     `xml:"artifactId" json:"artifactId,omitempty"`
	Version      string     `xml:"version" json:"version,omitempty"`
	Versioning   Versioning `xml:"versioning" json:"versioning"`
	Plugins      []Plugin   `xml:"plugins>plugin" json:"plugins,omitempty"`
}

// Versioning lists the versions published for an artifact.
type Versioning struct {
	Latest           string            `xml:"latest" json:"latest,omitempty"`
	Release          string            `xml:"release" json:"release,omitempty"`
	Snapshot         *Snapshot         `xml:"snapshot" json:"snapshot,omitempty"`
	Versions         []string          `xml:"versions>version" json:"versions,omitempty"`
	LastUpdated      string            `xml:"lastUpdated" json:"lastUpdated,omitempty"`
	SnapshotVersions []SnapshotVersion `xml:"snapshotVersions>snapshotVersion" json:"snapshotVersions,omitempty"`
}

// Snapshot describes the newest deployment of a snapshot version.
type Snapshot struct {
	Timestamp   string `xml:"timestamp" json:"timestamp,omitempty"`
	BuildNumber int    `xml:"buildNumber" json:"buildNumber,omitempty"`
	LocalCopy   bool   `xml:"localCopy" json:"localCopy,omitempty"`
}

// SnapshotVersion is one deployed file of a snapshot.
type SnapshotVersion struct {
	Classifier string `xml:"classifier" json:"classifier,omitempty"`
	Extension  string `xml:"extension" json:"extension"`
	Value      string `xml:"value" json:"value"`
	Updated    string `xml:"updated" json:"updated,omitempty"`
}

// Plugin is a group-level plugin prefix mapping.
type Plugin struct {
	Name       string `xml:"name" json:"name,omitempty"`
	Prefix     string `xml:"prefix" json:"prefix"`
	ArtifactID string `xml:"artifactId" json:"artifactId"`
}

// ParseMetadata decodes a metadata document. Only comments, processing
// instructions and whitespace may follow the root element.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	dec := xml.NewDecoder(r)
	md := &Metadata{}
	if err := dec.Decode(md); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty metadata document")
		}
		return nil, errors.Wrap(err, "could not decode metadata")
	}
	if err := expectDocumentEnd(dec); err != nil {
		return nil, err
	}
	return md, nil
}

func expectDocumentEnd(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "could not decode metadata")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return errors.Errorf("unexpected element <%s> after the root element", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return errors.Errorf("unexpected text %q after the root element", bytes.TrimSpace(t))
			}
		case xml.Directive:
			return errors.New("unexpected directive after the root element")
		}
	}
}

// LastUpdatedTime parses the <lastUpdated> stamp as UTC.
func (v *Versioning) LastUpdatedTime() (time.Time, error) {
	if v.LastUpdated == "" {
		return time.Time{}, errors.New("metadata has no lastUpdated timestamp")
	}
	t, err := time.Parse(lastUpdatedLayout, v.LastUpdated)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid lastUpdated timestamp %q", v.LastUpdated)
	}
	return t, nil
}

// SortedVersions returns the listed versions in ascending order. Versions
// that are not semantic versions come first, sorted lexically.
func (m *Metadata) SortedVersions() []string {
	var plain []string
	var parsed []*semver.Version
	orig := map[*semver.Version]string{}

	for _, v := range m.Versioning.Versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			plain = append(plain, v)
			continue
		}
		parsed = append(parsed, sv)
		orig[sv] = v
	}

	sort.Strings(plain)
	sort.Sort(semver.Collection(parsed))

	out := make([]string, 0, len(m.Versioning.Versions))
	out = append(out, plain...)
	for _, sv := range parsed {
		out = append(out, orig[sv])
	}
	return out
}

// Filter returns the sorted versions matching the glob pattern.
func (m *Metadata) Filter(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version pattern %q", pattern)
	}
	var out []string
	for _, v := range m.SortedVersions() {
		if g.Match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Matching returns the sorted versions that satisfy a semver constraint
// such as ">= 1.2, < 2". Versions that do not parse never match.
func (m *Metadata) Matching(constraint string) ([]string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version constraint %q", constraint)
	}
	var out []string
	for _, v := range m.SortedVersions() {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		if c.Check(sv) {
			out = append(out, v)
		}
	}
	return out, nil
}

// LatestVersion returns <latest>, falling back to the highest listed version.
func (m *Metadata) LatestVersion() string {
	if m.Versioning.Latest != "" {
		return m.Versioning.Latest
	}
	versions := m.SortedVersions()
	if len(versions) == 0 {
		return ""
	}
	return versions[len(versions)-1]
}

// LatestSnapshot resolves a snapshot version to its newest timestamped
// build, e.g. 1.0-SNAPSHOT to 1.0-20240101.120000-3. It returns the
// version unchanged for a local copy and "" when there is nothing to resolve.
func (m *Metadata) LatestSnapshot() string {
	s := m.Versioning.Snapshot
	if s == nil || !strings.HasSuffix(m.Version, "-"+artifact.SnapshotQualifier) {
		return ""
	}
	if s.LocalCopy {
		return m.Version
	}
	if s.Timestamp == "" || s.BuildNumber <= 0 {
		return ""
	}
	base := strings.TrimSuffix(m.Version, "-"+artifact.SnapshotQualifier)
	return base + "-" + s.Timestamp + "-" + strconv.Itoa(s.BuildNumber)
}
