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

	"github.com/spf13/cobra"

	"strongbox.io/client/pkg/cmd/require"
)

var repoDesc = `
This command consists of multiple subcommands to interact with repositories.

It can be used to add, remove and list the repository servers artifact
commands resolve --repo against.
`

func newRepoCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "repo add|remove|list [ARGS]",
		Short:             "add, list and remove artifact repositories",
		Long:              repoDesc,
		Args:              require.NoArgs,
		ValidArgsFunction: noMoreArgsCompFunc,
	}

	cmd.AddCommand(newRepoAddCmd(out))
	cmd.AddCommand(newRepoListCmd(out))
	cmd.AddCommand(newRepoRemoveCmd(out))

	return cmd
}
