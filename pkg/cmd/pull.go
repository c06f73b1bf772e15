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
	"log/slog"
	"path"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"strongbox.io/client/pkg/artifact"
	"strongbox.io/client/pkg/cmd/require"
	"strongbox.io/client/pkg/downloader"
)

const pullDesc = `
Download an artifact from a repository into a local directory.

An interrupted download is resumed on the next pull. The artifact is checked
against a published .sha256 or .sha512 checksum when one exists. Use --verify
to require a checksum and --no-verify to skip the check.

The destination defaults to the repository cache. With --layout the artifact
keeps its repository path below the destination.
`

type pullOptions struct {
	repoOptions
	destination string
	layout      bool
	verify      bool
	noVerify    bool
}

func newPullCmd(out io.Writer) *cobra.Command {
	o := &pullOptions{}

	cmd := &cobra.Command{
		Use:               "pull COORDINATE",
		Short:             "download an artifact",
		Long:              pullDesc,
		Args:              require.ExactArgs(1),
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), out, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.destination, "destination", "d", "", "location to write the artifact to")
	f.BoolVar(&o.layout, "layout", false, "keep the repository directory layout below the destination")
	f.BoolVar(&o.verify, "verify", false, "fail unless a published checksum matches the artifact")
	f.BoolVar(&o.noVerify, "no-verify", false, "skip checksum verification")
	addRepoFlags(f, &o.repoOptions)
	registerRepoCompletion(cmd)

	return cmd
}

func (o *pullOptions) strategy() (downloader.VerificationStrategy, error) {
	switch {
	case o.verify && o.noVerify:
		return 0, errors.New("--verify and --no-verify are mutually exclusive")
	case o.verify:
		return downloader.VerifyAlways, nil
	case o.noVerify:
		return downloader.VerifyNever, nil
	}
	return downloader.VerifyIfPossible, nil
}

func (o *pullOptions) run(ctx context.Context, out io.Writer, ref string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	strategy, err := o.strategy()
	if err != nil {
		return err
	}
	coord, err := artifact.ParseCoordinate(ref)
	if err != nil {
		return err
	}
	p, err := artifact.ResolvePath(coord)
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

	destDir := o.destination
	if destDir == "" {
		if destDir, err = repoCacheDir(settings.RepositoryCache, e.Name); err != nil {
			return err
		}
	}
	dest := filepath.Join(destDir, path.Base(p))
	if o.layout {
		dest, err = securejoin.SecureJoin(destDir, p)
		if err != nil {
			return err
		}
	}

	d := &downloader.Downloader{
		Client: client,
		Out:    out,
		Verify: strategy,
	}
	d.SetLogger(slog.Default().Handler())

	saved, ver, err := d.DownloadTo(ctx, loc.ResourcePath(p), dest)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Pulled: %s\n", coord)
	fmt.Fprintf(out, "Saved: %s\n", saved)
	if ver != nil && ver.Verified {
		fmt.Fprintf(out, "Digest: %s\n", ver.Digest)
	}
	return nil
}
