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

package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionWithMetadata(t *testing.T) {
	defer func(v, m string) { version, metadata = v, m }(version, metadata)

	version, metadata = "v1.2.0", ""
	assert.Equal(t, "v1.2.0", GetVersion())
	assert.Equal(t, "strongbox-client/1.2.0", GetUserAgent())

	metadata = "nightly"
	assert.Equal(t, "v1.2.0+nightly", GetVersion())
	assert.Equal(t, "strongbox-client/1.2.0+nightly", GetUserAgent())
}

func TestGetStripsGoVersionInTests(t *testing.T) {
	assert.Empty(t, Get().GoVersion)
	assert.Equal(t, GetVersion(), Get().Version)
}

func TestFromVCS(t *testing.T) {
	tests := []struct {
		name      string
		settings  []debug.BuildSetting
		commit    string
		treeState string
	}{
		{"unstamped", nil, "", ""},
		{"clean", []debug.BuildSetting{{Key: "vcs.revision", Value: "4e1c7f0"}, {Key: "vcs.modified", Value: "false"}}, "4e1c7f0", "clean"},
		{"dirty", []debug.BuildSetting{{Key: "vcs.modified", Value: "true"}, {Key: "vcs.revision", Value: "4e1c7f0"}}, "4e1c7f0", "dirty"},
		{"modified without revision", []debug.BuildSetting{{Key: "vcs.modified", Value: "true"}}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commit, state := fromVCS(tt.settings)
			assert.Equal(t, tt.commit, commit)
			assert.Equal(t, tt.treeState, state)
		})
	}
}
