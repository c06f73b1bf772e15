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

// Package sanitize masks credentials before they are printed.
package sanitize

import (
	"strongbox.io/client/pkg/repo"
)

const hiddenSecretValue = "[HIDDEN]"

// HideEntrySecrets returns copies of entries with passwords masked. The
// originals are left untouched so they can still be written back to disk.
func HideEntrySecrets(entries []*repo.Entry) []*repo.Entry {
	out := make([]*repo.Entry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		cp := *e
		if cp.Password != "" {
			cp.Password = hiddenSecretValue
		}
		out = append(out, &cp)
	}
	return out
}
