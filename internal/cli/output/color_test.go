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

package output

import (
	"strings"
	"testing"
)

func TestColorizeStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		noColor    bool
		envNoColor string
		wantColor  bool
		wantText   string
	}{
		{
			name:      "ok with color",
			code:      200,
			wantColor: true,
			wantText:  "200 OK",
		},
		{
			name:     "ok without color flag",
			code:     200,
			noColor:  true,
			wantText: "200 OK",
		},
		{
			name:       "ok with NO_COLOR env",
			code:       200,
			envNoColor: "1",
			wantText:   "200 OK",
		},
		{
			name:      "not found with color",
			code:      404,
			wantColor: true,
			wantText:  "404 Not Found",
		},
		{
			name:      "server error with color",
			code:      503,
			wantColor: true,
			wantText:  "503 Service Unavailable",
		},
		{
			name:     "redirect is never colored",
			code:     302,
			wantText: "302 Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.envNoColor)

			result := ColorizeStatus(tt.code, tt.noColor)

			// Outside a terminal fatih/color disables itself, so only the
			// absence of color can be asserted reliably.
			hasColor := strings.Contains(result, "\033[")
			if hasColor && !tt.wantColor {
				t.Errorf("ColorizeStatus() returned color when none expected: %q", result)
			}

			if !strings.Contains(result, tt.wantText) {
				t.Errorf("ColorizeStatus() = %q, want to contain %q", result, tt.wantText)
			}
		})
	}
}

func TestColorizeHeader(t *testing.T) {
	for _, noColor := range []bool{true, false} {
		result := ColorizeHeader("NAME", noColor)
		if !strings.Contains(result, "NAME") {
			t.Errorf("ColorizeHeader() = %q, want to contain %q", result, "NAME")
		}
		if noColor && result != "NAME" {
			t.Errorf("expected header to be left untouched, got %q", result)
		}
	}
}
