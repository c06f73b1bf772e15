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

	"strongbox.io/client/internal/cli/output"
	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/cmd/require"
)

// probeHeaders are printed when the response carries them.
var probeHeaders = []string{"Content-Type", "Content-Length", "Last-Modified", "ETag", "Accept-Ranges"}

type probeOptions struct {
	repoOptions
}

func newProbeCmd(out io.Writer) *cobra.Command {
	o := &probeOptions{}

	cmd := &cobra.Command{
		Use:               "probe COORDINATE",
		Short:             "print the raw response status for an artifact",
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

func (o *probeOptions) run(ctx context.Context, out io.Writer, ref string) error {
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

	resp, err := client.ProbeStatus(ctx, coord, loc)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	u, _ := client.URLForArtifact(coord, loc)
	fmt.Fprintf(out, "%s\n%s\n", u, output.ColorizeStatus(resp.StatusCode, settings.NoColor))
	for _, h := range probeHeaders {
		if v := resp.Header.Get(h); v != "" {
			fmt.Fprintf(out, "%s: %s\n", h, v)
		}
	}
	return nil
}
