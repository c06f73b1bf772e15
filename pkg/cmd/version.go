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
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"strongbox.io/client/internal/cli/output"
	"strongbox.io/client/internal/version"
	"strongbox.io/client/pkg/cmd/require"
)

const versionDesc = `
Print which build of the strongbox client is running.

The default line names the release and, when the binary was built from a git
checkout, the commit it was built from:

    strongbox v0.4 (commit 4e1c7f0, clean, go1.23.4)

Bug reports should include the output of 'strongbox version -o yaml'.

Use --short for the bare release, suffixed with the abbreviated commit when it
is known. --template takes a Go template evaluated against the build info; the
fields are .Version, .GitCommit, .GitTreeState and .GoVersion:

    $ strongbox version --template '{{.Version}}'
    v0.4
`

type versionOptions struct {
	short    bool
	template string
	outfmt   output.Format
}

func newVersionCmd(out io.Writer) *cobra.Command {
	o := &versionOptions{}

	cmd := &cobra.Command{
		Use:               "version",
		Short:             "show which build of the client is running",
		Long:              versionDesc,
		Args:              require.NoArgs,
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(_ *cobra.Command, _ []string) error {
			return o.run(out)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.short, "short", false, "print only the release")
	f.StringVar(&o.template, "template", "", "Go template applied to the build info")
	bindOutputFlag(cmd, &o.outfmt)

	return cmd
}

func (o *versionOptions) run(out io.Writer) error {
	info := version.Get()
	switch {
	case o.template != "":
		tt, err := template.New("version").Parse(o.template)
		if err != nil {
			return err
		}
		return tt.Execute(out, info)
	case o.short:
		_, err := fmt.Fprintln(out, shortVersion(info))
		return err
	}
	return o.outfmt.Write(out, buildInfoWriter(info))
}

func shortVersion(info version.BuildInfo) string {
	if len(info.GitCommit) >= 7 {
		return info.Version + "+g" + info.GitCommit[:7]
	}
	return info.Version
}

type buildInfoWriter version.BuildInfo

func (w buildInfoWriter) WriteTable(out io.Writer) error {
	var details []string
	if len(w.GitCommit) >= 7 {
		details = append(details, "commit "+w.GitCommit[:7])
	}
	if w.GitTreeState != "" {
		details = append(details, w.GitTreeState)
	}
	if w.GoVersion != "" {
		details = append(details, w.GoVersion)
	}
	line := "strongbox " + w.Version
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	_, err := fmt.Fprintln(out, line)
	return err
}

func (w buildInfoWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, version.BuildInfo(w))
}

func (w buildInfoWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, version.BuildInfo(w))
}
