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

// Package strongboxpath builds the locations of the client's configuration
// and cache files.
package strongboxpath

const lp = lazypath("strongbox")

// ConfigPath returns the path where the client stores configuration.
func ConfigPath(elem ...string) string {
	return lp.configPath(elem...)
}

// CachePath returns the path where the client stores downloads.
func CachePath(elem ...string) string {
	return lp.cachePath(elem...)
}

// RepositoryFile returns the path to the repositories.yaml file.
func RepositoryFile() string { return ConfigPath("repositories.yaml") }

// RepositoryCache returns the directory pulled artifacts are stored under.
func RepositoryCache() string { return CachePath("repository") }
