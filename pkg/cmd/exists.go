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

	"github.com/spf13/cobra"

	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/cmd/require"
)

const existsDesc = `
Check whether an artifact is published in a repository.

A 200 answer means the artifact exists and a 404 that it does not. Any other
status is reported as an error. With --path the argument is taken as a path
on the server and every status except 200 counts as absent.
`

type existsOptions struct {
	repoOptions
	rawPath bool
}

func newExistsCmd(out io.Writer) *cobra.Command {
	o := &existsOptions{}

	cmd := &cobra.Command{
		Use:               "exists COORDINATE|PATH",
		Short:             "check whether an artifact is published",
		Long:              existsDesc,
		Args:              require.ExactArgs(1),
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), out, args[0])
		},
	}

	f := cmd.Flags()
	f.BoolVar(&o.rawPath, "path", false, "treat the argument as a server path rather than a coordinate")
	addRepoFlags(f, &o.repoOptions)
	registerRepoCompletion(cmd)

	return cmd
}

func (o *existsOptions) run(ctx context.Context, out io.Writer, ref string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := o.entry()
	if err != nil {
		return err
	}
	client, err := newClient(e)
	if err != nil {
		return err
	}
	defer client.Close()

	var found bool
	if o.rawPath {
		found, err = client.Exists(ctx, ref)
	} else {
		coord, perr := artifact.ParseCoordinate(ref)
		if perr != nil {
			return perr
		}
		loc, lerr := requireLocation(e)
		if lerr != nil {
			return lerr
		}
		found, err = client.ArtifactExists(ctx, coord, loc)
	}
	if err != nil {
		return err
	}

	if found {
		fmt.Fprintf(out, "%s exists\n", ref)
	} else {
		fmt.Fprintf(out, "%s not found\n", ref)
	}
	return nil
}
