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

// Package version reports how the strongbox client was built.
package version // import "strongbox.io/client/internal/version"

import (
	"flag"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X strongbox.io/client/internal/version.<name>=...".
// gitCommit and gitTreeState fall back to the VCS stamp of the binary.
var (
	version      = "v0.4"
	metadata     = ""
	gitCommit    = ""
	gitTreeState = ""
)

// BuildInfo is printed by `strongbox version`.
type BuildInfo struct {
	Version      string `json:"version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
	GitTreeState string `json:"git_tree_state,omitempty"` // "clean" or "dirty"
	GoVersion    string `json:"go_version,omitempty"`
}

// GetVersion returns the release, with build metadata appended after a '+'.
func GetVersion() string {
	if metadata == "" {
		return version
	}
	return version + "+" + metadata
}

// GetUserAgent returns the User-Agent sent with every repository request,
// e.g. strongbox-client/0.4.
func GetUserAgent() string {
	return "strongbox-client/" + strings.TrimPrefix(GetVersion(), "v")
}

// Get returns the build info of the running binary.
func Get() BuildInfo {
	v := BuildInfo{
		Version:      GetVersion(),
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		GoVersion:    runtime.Version(),
	}
	if v.GitCommit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			v.GitCommit, v.GitTreeState = fromVCS(bi.Settings)
		}
	}

	// Test output must not depend on the toolchain.
	if flag.Lookup("test.v") != nil {
		v.GoVersion = ""
	}
	return v
}

// fromVCS reads the revision stamped by `go build`.
func fromVCS(settings []debug.BuildSetting) (commit, treeState string) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.modified":
			treeState = "clean"
			if s.Value == "true" {
				treeState = "dirty"
			}
		}
	}
	if commit == "" {
		return "", ""
	}
	return commit, treeState
}
