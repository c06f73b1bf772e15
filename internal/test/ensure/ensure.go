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

package ensure

import (
	"testing"

	"strongbox.io/client/pkg/strongboxpath"
	"strongbox.io/client/pkg/strongboxpath/xdg"
)

// StrongboxHome points the config and cache homes at fresh temp dirs for
// the duration of the test.
func StrongboxHome(t *testing.T) {
	t.Helper()
	t.Setenv(xdg.CacheHomeEnvVar, t.TempDir())
	t.Setenv(xdg.ConfigHomeEnvVar, t.TempDir())
	t.Setenv(strongboxpath.CacheHomeEnvVar, "")
	t.Setenv(strongboxpath.ConfigHomeEnvVar, "")
}
