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

package strongboxpath

import (
	"os"
	"path/filepath"

	"strongbox.io/client/pkg/strongboxpath/xdg"
)

const (
	// CacheHomeEnvVar overrides the cache directory. When no value is set a
	// default is used.
	CacheHomeEnvVar = "STRONGBOX_CACHE_HOME"

	// ConfigHomeEnvVar overrides the config directory. When no value is set
	// a default is used.
	ConfigHomeEnvVar = "STRONGBOX_CONFIG_HOME"
)

// lazypath resolves paths at call time so environment changes are honoured.
type lazypath string

func (l lazypath) path(appEnvVar, xdgEnvVar string, defaultFn func() string, elem ...string) string {
	// 1. application variable, 2. XDG variable, 3. default under $HOME
	base := os.Getenv(appEnvVar)
	if base != "" {
		return filepath.Join(base, filepath.Join(elem...))
	}
	base = os.Getenv(xdgEnvVar)
	if base == "" {
		base = defaultFn()
	}
	return filepath.Join(base, string(l), filepath.Join(elem...))
}

func (l lazypath) cachePath(elem ...string) string {
	return l.path(CacheHomeEnvVar, xdg.CacheHomeEnvVar, cacheHome, filepath.Join(elem...))
}

func (l lazypath) configPath(elem ...string) string {
	return l.path(ConfigHomeEnvVar, xdg.ConfigHomeEnvVar, configHome, filepath.Join(elem...))
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.TempDir()
}

// configHome is $HOME/.config when $XDG_CONFIG_HOME is unset.
func configHome() string {
	return filepath.Join(homeDir(), ".config")
}

// cacheHome is $HOME/.cache when $XDG_CACHE_HOME is unset.
func cacheHome() string {
	return filepath.Join(homeDir(), ".cache")
}
