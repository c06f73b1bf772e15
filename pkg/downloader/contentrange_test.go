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

package downloader

import "testing"

func TestParseContentRange(t *testing.T) {
	tests := []struct {
		header            string
		start, end, total int64
		wantErr           bool
	}{
		{header: "bytes 0-99/1000", start: 0, end: 99, total: 1000},
		{header: "bytes 100-999/1000", start: 100, end: 999, total: 1000},
		{header: "bytes 5-9/*", start: 5, end: 9, total: -1},
		{header: "", wantErr: true},
		{header: "items 0-1/2", wantErr: true},
		{header: "bytes 0-99", wantErr: true},
		{header: "bytes */1000", wantErr: true},
		{header: "bytes a-99/1000", wantErr: true},
		{header: "bytes 99-10/1000", wantErr: true},
		{header: "bytes 0-99/lots", wantErr: true},
	}

	for _, tt := range tests {
		start, end, total, err := ParseContentRange(tt.header)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected an error", tt.header)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %s", tt.header, err)
			continue
		}
		if start != tt.start || end != tt.end || total != tt.total {
			t.Errorf("%q: expected %d-%d/%d, got %d-%d/%d", tt.header, tt.start, tt.end, tt.total, start, end, total)
		}
	}
}

func TestParseUnsatisfiedRange(t *testing.T) {
	tests := []struct {
		header  string
		total   int64
		wantErr bool
	}{
		{header: "bytes */1000", total: 1000},
		{header: " bytes */0 ", total: 0},
		{header: "bytes 0-99/1000", wantErr: true},
		{header: "bytes */*", wantErr: true},
		{header: "bytes */-4", wantErr: true},
		{header: "", wantErr: true},
	}

	for _, tt := range tests {
		total, err := ParseUnsatisfiedRange(tt.header)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected an error", tt.header)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %s", tt.header, err)
			continue
		}
		if total != tt.total {
			t.Errorf("%q: expected length %d, got %d", tt.header, tt.total, total)
		}
	}
}
