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

/*
Package cli describes the operating environment for the strongbox CLI.

Settings come from STRONGBOX_* environment variables and can be overridden
by the global command line flags.
*/
package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"strongbox.io/client/pkg/getter"
	"strongbox.io/client/pkg/strongboxpath"
)

// defaultTimeout bounds every request made by the CLI.
const defaultTimeout = getter.DefaultHTTPTimeout * time.Second

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// Debug indicates whether or not the CLI is running in Debug mode.
	Debug bool
	// RepositoryConfig is the path to the repositories file.
	RepositoryConfig string
	// RepositoryCache is the directory pulled artifacts are stored in.
	RepositoryCache string
	// Timeout is the per request timeout.
	Timeout time.Duration
	// NoColor disables colored output.
	NoColor bool
}

// New returns settings populated from the environment.
func New() *EnvSettings {
	env := &EnvSettings{
		RepositoryConfig: envOr("STRONGBOX_REPOSITORY_CONFIG", strongboxpath.RepositoryFile()),
		RepositoryCache:  envOr("STRONGBOX_REPOSITORY_CACHE", strongboxpath.RepositoryCache()),
		Timeout:          envDurationOr("STRONGBOX_TIMEOUT", defaultTimeout),
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("STRONGBOX_DEBUG"))
	env.NoColor = envBoolOr("NO_COLOR", false)
	return env
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.StringVar(&s.RepositoryConfig, "repository-config", s.RepositoryConfig, "path to the file containing repository names and URLs")
	fs.StringVar(&s.RepositoryCache, "repository-cache", s.RepositoryCache, "path to the directory pulled artifacts are stored in")
	fs.DurationVar(&s.Timeout, "timeout", s.Timeout, "time to wait for any individual request")
	fs.BoolVar(&s.NoColor, "no-color", s.NoColor, "disable colored output")
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

func envBoolOr(name string, def bool) bool {
	if name == "" {
		return def
	}
	envVal := envOr(name, strconv.FormatBool(def))
	ret, err := strconv.ParseBool(envVal)
	if err != nil {
		return def
	}
	return ret
}

func envDurationOr(name string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// A bare number is taken as seconds.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// EnvVars returns the effective settings as environment variables.
func (s *EnvSettings) EnvVars() map[string]string {
	return map[string]string{
		"STRONGBOX_BIN":               os.Args[0],
		"STRONGBOX_CACHE_HOME":        strongboxpath.CachePath(""),
		"STRONGBOX_CONFIG_HOME":       strongboxpath.ConfigPath(""),
		"STRONGBOX_DEBUG":             fmt.Sprint(s.Debug),
		"STRONGBOX_REPOSITORY_CACHE":  s.RepositoryCache,
		"STRONGBOX_REPOSITORY_CONFIG": s.RepositoryConfig,
		"STRONGBOX_TIMEOUT":           s.Timeout.String(),
	}
}
