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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"strongbox.io/client/pkg/cmd/require"
	"strongbox.io/client/pkg/repo"
)

type repoRemoveOptions struct {
	names     []string
	repoFile  string
	repoCache string
}

func newRepoRemoveCmd(out io.Writer) *cobra.Command {
	o := &repoRemoveOptions{}

	cmd := &cobra.Command{
		Use:     "remove [REPO1 [REPO2 ...]]",
		Aliases: []string{"rm"},
		Short:   "remove one or more artifact repositories",
		Args:    require.MinimumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return compListRepos(toComplete, args), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			o.repoFile = settings.RepositoryConfig
			o.repoCache = settings.RepositoryCache
			o.names = args
			return o.run(out)
		},
	}
	return cmd
}

func (o *repoRemoveOptions) run(out io.Writer) error {
	r, err := repo.LoadFile(o.repoFile)
	if isNotExist(err) || len(r.Repositories) == 0 {
		return errors.New("no repositories configured")
	}

	for _, name := range o.names {
		if !r.Has(name) {
			return errors.Errorf("no repo named %q found", name)
		}
		// Resolve the cache first so a bad name leaves the file untouched.
		cacheDir, err := repoCacheDir(o.repoCache, name)
		if err != nil {
			return err
		}

		r.Remove(name)
		if err := r.WriteFile(o.repoFile, 0600); err != nil {
			return err
		}

		if err := removeRepoCache(cacheDir); err != nil {
			return err
		}
		fmt.Fprintf(out, "%q has been removed from your repositories\n", name)
	}

	return nil
}

// repoCacheDir returns the directory holding the artifacts pulled from the
// named repository. It must resolve strictly below root.
func repoCacheDir(root, name string) (string, error) {
	dir, err := securejoin.SecureJoin(root, name)
	if err != nil {
		return "", errors.Wrapf(err, "invalid cache directory for repository %q", name)
	}
	rel, err := filepath.Rel(filepath.Clean(root), dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("repository name %q does not name a directory inside the repository cache %s", name, root)
	}
	return dir, nil
}

// removeRepoCache deletes the artifacts pulled from a repository.
func removeRepoCache(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "can't remove cache directory %s", dir)
	}
	return os.RemoveAll(dir)
}
