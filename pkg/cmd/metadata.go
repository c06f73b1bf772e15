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

package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"strongbox.io/client/internal/cli/output"
	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/cmd/require"
	"strongbox.io/client/pkg/repo"
)

const metadataDesc = `
List the versions of an artifact published in a repository.

The argument is GROUP:ARTIFACT, or GROUP:ARTIFACT:VERSION to read the
version-level document of a snapshot. Versions can be narrowed with a glob
(--filter '1.*') or a semantic version constraint (--constraint '>= 1.2, < 2').
`

type metadataOptions struct {
	repoOptions
	filter     string
	constraint string
	outfmt     output.Format
}

func newMetadataCmd(out io.Writer) *cobra.Command {
	o := &metadataOptions{}

	cmd := &cobra.Command{
		Use:               "metadata GROUP:ARTIFACT[:VERSION]",
		Short:             "list the published versions of an artifact",
		Long:              metadataDesc,
		Args:              require.ExactArgs(1),
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), out, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.filter, "filter", "", "only list versions matching this glob")
	f.StringVar(&o.constraint, "constraint", "", "only list versions satisfying this semantic version constraint")
	addRepoFlags(f, &o.repoOptions)
	registerRepoCompletion(cmd)
	bindOutputFlag(cmd, &o.outfmt)

	return cmd
}

func (o *metadataOptions) run(ctx context.Context, out io.Writer, ref string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if o.filter != "" && o.constraint != "" {
		return errors.New("--filter and --constraint are mutually exclusive")
	}

	parts := strings.Split(ref, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return &artifact.InvalidIdentifierError{ID: ref, Err: errors.New("expected groupId:artifactId[:version]")}
	}
	var version string
	if len(parts) == 3 {
		version = parts[2]
	}
	rel, err := artifact.MetadataPath(parts[0], parts[1], version)
	if err != nil {
		return err
	}

	e, err := o.entry()
	if err != nil {
		return err
	}
	loc, err := requireLocation(e)
	if err != nil {
		return err
	}
	client, err := newClient(e)
	if err != nil {
		return err
	}
	defer client.Close()

	md, err := client.RetrieveMetadata(ctx, loc.ResourcePath(rel))
	if err != nil {
		return err
	}
	if md == nil {
		return errors.Errorf("no metadata published for %s", ref)
	}

	versions := md.SortedVersions()
	switch {
	case o.filter != "":
		versions, err = md.Filter(o.filter)
	case o.constraint != "":
		versions, err = md.Matching(o.constraint)
	}
	if err != nil {
		return err
	}

	return o.outfmt.Write(out, &metadataWriter{md: md, versions: versions, noColor: settings.NoColor})
}

type metadataElement struct {
	GroupID     string   `json:"groupId,omitempty"`
	ArtifactID  string   `json:"artifactId,omitempty"`
	Version     string   `json:"version,omitempty"`
	Latest      string   `json:"latest,omitempty"`
	Release     string   `json:"release,omitempty"`
	Snapshot    string   `json:"snapshot,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
	Versions    []string `json:"versions"`
}

type metadataWriter struct {
	md       *repo.Metadata
	versions []string
	noColor  bool
}

func (w *metadataWriter) element() metadataElement {
	el := metadataElement{
		GroupID:     w.md.GroupID,
		ArtifactID:  w.md.ArtifactID,
		Version:     w.md.Version,
		Latest:      w.md.LatestVersion(),
		Release:     w.md.Versioning.Release,
		Snapshot:    w.md.LatestSnapshot(),
		LastUpdated: w.md.Versioning.LastUpdated,
		Versions:    w.versions,
	}
	if el.Versions == nil {
		el.Versions = []string{}
	}
	if t, err := w.md.Versioning.LastUpdatedTime(); err == nil {
		el.LastUpdated = t.Format("2006-01-02T15:04:05Z")
	}
	return el
}

func (w *metadataWriter) WriteTable(out io.Writer) error {
	el := w.element()
	table := uitable.New()
	table.AddRow(output.ColorizeHeader("VERSION", w.noColor), output.ColorizeHeader("TAGS", w.noColor))
	for _, v := range el.Versions {
		var tags []string
		if v == el.Latest {
			tags = append(tags, "latest")
		}
		if v == el.Release {
			tags = append(tags, "release")
		}
		table.AddRow(v, strings.Join(tags, ","))
	}
	if el.Snapshot != "" {
		table.AddRow(el.Snapshot, "snapshot")
	}
	return output.EncodeTable(out, table)
}

func (w *metadataWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w.element())
}

func (w *metadataWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w.element())
}
