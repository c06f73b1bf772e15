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
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"strongbox.io/client/pkg/cmd/require"
	"strongbox.io/client/pkg/repo"
)

const getDesc = `
Write the resource at a server path to standard output or a file.

With --offset only the bytes from that position onward are requested. Servers
that ignore the range answer with the whole resource.
`

type getOptions struct {
	repoOptions
	offset     int64
	outputFile string
}

func newGetCmd(out io.Writer) *cobra.Command {
	o := &getOptions{}

	cmd := &cobra.Command{
		Use:               "get PATH",
		Short:             "fetch a resource from the server",
		Long:              getDesc,
		Args:              require.ExactArgs(1),
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), out, args[0])
		},
	}

	f := cmd.Flags()
	f.Int64Var(&o.offset, "offset", 0, "first byte to request")
	f.StringVar(&o.outputFile, "output-file", "", "write the body to this file instead of standard output")
	addRepoFlags(f, &o.repoOptions)
	registerRepoCompletion(cmd)

	return cmd
}

func (o *getOptions) run(ctx context.Context, out io.Writer, path string) error {
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

	res, err := client.Fetch(ctx, path, o.offset)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusPartialContent:
	default:
		return &repo.ResponseError{
			Op:         "fetch",
			URL:        client.ResourceURL(path),
			StatusCode: res.StatusCode,
			Reason:     http.StatusText(res.StatusCode),
		}
	}

	if o.outputFile != "" {
		err = writeFile(o.outputFile, res.Body)
	} else {
		_, err = io.Copy(out, res.Body)
	}
	if err != nil {
		return errors.Wrapf(err, "could not save %s", client.ResourceURL(path))
	}
	return nil
}

// writeFile copies body into name. A failed close fails the write.
func writeFile(name string, body io.Reader) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
