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

package main // import "strongbox.io/client/cmd/strongbox"

import (
	"fmt"
	"os"

	strongboxcmd "strongbox.io/client/pkg/cmd"
)

func main() {
	strongboxcmd.SetupLogging(os.Stderr)

	cmd, err := strongboxcmd.NewRootCmd(os.Stdout, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
