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

	"github.com/spf13/cobra"

	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/cmd/require"
)

const pathDesc = `
Print the repository path of an artifact.

The coordinate has the form GROUP:ARTIFACT[:EXTENSION[:CLASSIFIER]]:VERSION.
The extension defaults to jar. When --repo or --url is given the full URL
inside the selected storage and repository is printed instead.

    $ strongbox path org.example:lib:1.0
    org/example/lib/1.0/lib-1.0.jar
`

type pathOptions struct {
	repoOptions
	metadata bool
}

func newPathCmd(out io.Writer) *cobra.Command {
	o := &pathOptions{}

	cmd := &cobra.Command{
		Use:               "path COORDINATE",
		Short:             "print the repository path of an artifact",
		Long:              pathDesc,
		Args:              require.ExactArgs(1),
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(_ *cobra.Command, args []string) error {
			return o.run(out, args[0])
		},
	}

	f := cmd.Flags()
	f.BoolVar(&o.metadata, "metadata", false, "print the path of the artifact's metadata document instead")
	addRepoFlags(f, &o.repoOptions)
	registerRepoCompletion(cmd)

	return cmd
}

func (o *pathOptions) run(out io.Writer, ref string) error {
	coord, err := artifact.ParseCoordinate(ref)
	if err != nil {
		return err
	}

	p, err := artifact.ResolvePath(coord)
	if o.metadata {
		p, err = artifact.MetadataPath(coord.GroupID, coord.ArtifactID, "")
	}
	if err != nil {
		return err
	}

	if o.name == "" && o.url == "" {
		fmt.Fprintln(out, p)
		return nil
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

	fmt.Fprintln(out, client.ResourceURL(loc.ResourcePath(p)))
	return nil
}
