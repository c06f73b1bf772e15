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

package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"strongbox.io/client/pkg/repo"
)

func TestHideEntrySecrets(t *testing.T) {
	entries := []*repo.Entry{
		{Name: "releases", URL: "https://repo.example.com"},
		nil,
		{Name: "snapshots", URL: "https://repo.example.com", Username: "deployer", Password: "secret"},
	}

	got := HideEntrySecrets(entries)

	assert.Len(t, got, 2)
	assert.Empty(t, got[0].Password)
	assert.Equal(t, "deployer", got[1].Username)
	assert.Equal(t, hiddenSecretValue, got[1].Password)
	assert.Equal(t, "secret", entries[2].Password, "the original entry must not be modified")
}
