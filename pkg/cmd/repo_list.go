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
	"io"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"strongbox.io/client/internal/cli/output"
	"strongbox.io/client/pkg/cli/sanitize"
	"strongbox.io/client/pkg/cmd/require"
	"strongbox.io/client/pkg/repo"
)

func newRepoListCmd(out io.Writer) *cobra.Command {
	var outfmt output.Format
	cmd := &cobra.Command{
		Use:               "list",
		Aliases:           []string{"ls"},
		Short:             "list artifact repositories",
		Args:              require.NoArgs,
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := repo.LoadFile(settings.RepositoryConfig)
			if isNotExist(err) || (err == nil && len(f.Repositories) == 0) {
				if outfmt == output.Table {
					return repo.ErrNoRepositories
				}
			} else if err != nil {
				return err
			}

			var repos []*repo.Entry
			if f != nil {
				repos = f.Repositories
			}
			return outfmt.Write(out, &repoListWriter{repos: repos, noColor: settings.NoColor})
		},
	}

	bindOutputFlag(cmd, &outfmt)

	return cmd
}

type repositoryElement struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	StorageID    string `json:"storageId,omitempty"`
	RepositoryID string `json:"repositoryId,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
}

type repoListWriter struct {
	repos   []*repo.Entry
	noColor bool
}

func (r *repoListWriter) WriteTable(out io.Writer) error {
	table := uitable.New()
	table.AddRow(
		output.ColorizeHeader("NAME", r.noColor),
		output.ColorizeHeader("URL", r.noColor),
		output.ColorizeHeader("STORAGE", r.noColor),
		output.ColorizeHeader("REPOSITORY", r.noColor),
	)
	for _, re := range r.repos {
		table.AddRow(re.Name, re.URL, re.StorageID, re.RepositoryID)
	}
	return output.EncodeTable(out, table)
}

func (r *repoListWriter) WriteJSON(out io.Writer) error {
	return r.encodeByFormat(out, output.JSON)
}

func (r *repoListWriter) WriteYAML(out io.Writer) error {
	return r.encodeByFormat(out, output.YAML)
}

func (r *repoListWriter) encodeByFormat(out io.Writer, format output.Format) error {
	// Initialize the array so no results returns an empty array instead of null
	repolist := make([]repositoryElement, 0, len(r.repos))

	for _, re := range sanitize.HideEntrySecrets(r.repos) {
		repolist = append(repolist, repositoryElement{
			Name:         re.Name,
			URL:          re.URL,
			StorageID:    re.StorageID,
			RepositoryID: re.RepositoryID,
			Username:     re.Username,
			Password:     re.Password,
		})
	}

	switch format {
	case output.JSON:
		return output.EncodeJSON(out, repolist)
	case output.YAML:
		return output.EncodeYAML(out, repolist)
	}

	return errors.New("invalid format type")
}
