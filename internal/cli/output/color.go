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
	"net/http"
	"strconv"

	"github.com/fatih/color"
)

// ColorizeStatus renders an HTTP status code, green for success, yellow for
// not found and red for everything else that is an error.
func ColorizeStatus(code int, noColor bool) string {
	s := strconv.Itoa(code) + " " + http.StatusText(code)
	if noColor {
		return s
	}

	switch {
	case code >= 200 && code < 300:
		return color.GreenString(s)
	case code == http.StatusNotFound:
		return color.YellowString(s)
	case code >= 400:
		return color.RedString(s)
	default:
		return s
	}
}

// ColorizeHeader returns a colorized version of a header string
func ColorizeHeader(header string, noColor bool) string {
	if noColor {
		return header
	}
	return color.New(color.Bold).Sprint(header)
}
