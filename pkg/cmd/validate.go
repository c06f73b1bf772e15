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
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/cmd/require"
)

const validateDesc = `
Download an artifact completely and discard it.

The command fails when the server does not answer 200 or sends an empty body.
Nothing is written to disk.
`

type validateOptions struct {
	repoOptions
}

func newValidateCmd(out io.Writer) *cobra.Command {
	o := &validateOptions{}

	cmd := &cobra.Command{
		Use:               "validate COORDINATE",
		Short:             "check that an artifact can be downloaded",
		Long:              validateDesc,
		Args:              require.ExactArgs(1),
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), out, args[0])
		},
	}

	addRepoFlags(cmd.Flags(), &o.repoOptions)
	registerRepoCompletion(cmd)

	return cmd
}

func (o *validateOptions) run(ctx context.Context, out io.Writer, ref string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	coord, err := artifact.ParseCoordinate(ref)
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

	repositoryID := strings.TrimSuffix(loc.ResourcePath(""), "/")
	if err := client.FetchFullyAndValidate(ctx, coord, repositoryID); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s downloaded successfully\n", coord)
	return nil
}
