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

package cmd // import "strongbox.io/client/pkg/cmd"

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"strongbox.io/client/internal/logging"
	"strongbox.io/client/pkg/cli"
)

var globalUsage = `The strongbox artifact repository client

Common actions:

- strongbox repo add:    remember a repository server
- strongbox exists:      check whether an artifact is published
- strongbox pull:        download an artifact, resuming interrupted transfers
- strongbox metadata:    list the versions published for an artifact

Environment variables:

| Name                          | Description                                                  |
|-------------------------------|--------------------------------------------------------------|
| $STRONGBOX_CACHE_HOME         | set an alternative location for storing cached files.        |
| $STRONGBOX_CONFIG_HOME        | set an alternative location for storing configuration.       |
| $STRONGBOX_DEBUG              | indicate whether or not the client is running in Debug mode  |
| $STRONGBOX_REPOSITORY_CACHE   | set the directory pulled artifacts are stored in             |
| $STRONGBOX_REPOSITORY_CONFIG  | set the path to the repositories file.                       |
| $STRONGBOX_TIMEOUT            | set the per request timeout, e.g. 30s                        |
| $NO_COLOR                     | disable colored output                                       |
`

var settings = cli.New()

// SetupLogging installs the default logger. Debug records are emitted only
// while --debug or STRONGBOX_DEBUG is set.
func SetupLogging(w io.Writer) {
	logger := logging.NewLogger(w, func() bool { return settings.Debug })
	slog.SetDefault(logger)
}

// NewRootCmd builds the strongbox command tree.
func NewRootCmd(out io.Writer, args []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          "strongbox",
		Short:        "The strongbox artifact repository client.",
		Long:         globalUsage,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	// We can safely ignore any errors that flags.Parse encounters since
	// those errors will be caught later during the call to cmd.Execution.
	// This call is required to gather configuration information prior to
	// execution.
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Parse(args)

	cmd.AddCommand(
		// repository configuration
		newRepoCmd(out),

		// artifact commands
		newPathCmd(out),
		newExistsCmd(out),
		newProbeCmd(out),
		newGetCmd(out),
		newValidateCmd(out),
		newPullCmd(out),
		newMetadataCmd(out),

		newVersionCmd(out),
	)

	return cmd, nil
}
