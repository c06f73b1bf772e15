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

package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"strongbox.io/client/internal/cli/output"
	"strongbox.io/client/pkg/getter"
	"strongbox.io/client/pkg/repo"
)

const outputFlag = "output"

// repoOptions selects the server an artifact command talks to, either a
// configured repository by name or an ad hoc URL.
type repoOptions struct {
	name                  string
	url                   string
	storageID             string
	repositoryID          string
	username              string
	password              string
	certFile              string
	keyFile               string
	caFile                string
	insecureSkipTLSverify bool
}

func addRepoFlags(f *pflag.FlagSet, o *repoOptions) {
	f.StringVar(&o.name, "repo", "", "name of a configured repository")
	f.StringVar(&o.url, "url", "", "repository server URL, used instead of --repo")
	f.StringVar(&o.storageID, "storage-id", "", "storage holding the repository (overrides the configured value)")
	f.StringVar(&o.repositoryID, "repository-id", "", "repository inside the storage (overrides the configured value)")
	f.StringVar(&o.username, "username", "", "repository username")
	f.StringVar(&o.password, "password", "", "repository password")
	f.StringVar(&o.certFile, "cert-file", "", "identify HTTPS client using this SSL certificate file")
	f.StringVar(&o.keyFile, "key-file", "", "identify HTTPS client using this SSL key file")
	f.StringVar(&o.caFile, "ca-file", "", "verify certificates of HTTPS-enabled servers using this CA bundle")
	f.BoolVar(&o.insecureSkipTLSverify, "insecure-skip-tls-verify", false, "skip tls certificate checks for the repository")
}

func registerRepoCompletion(cmd *cobra.Command) {
	err := cmd.RegisterFlagCompletionFunc("repo", func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return compListRepos(toComplete, nil), cobra.ShellCompDirectiveNoFileComp
	})
	if err != nil {
		log.Fatal(err)
	}
}

// entry resolves the flags to a repository entry. Flags given on the command
// line override the values stored for a named repository.
func (o *repoOptions) entry() (*repo.Entry, error) {
	e := &repo.Entry{Name: "command-line"}
	switch {
	case o.name != "" && o.url != "":
		return nil, errors.New("--repo and --url are mutually exclusive")
	case o.name != "":
		f, err := repo.LoadFile(settings.RepositoryConfig)
		if err != nil {
			if isNotExist(err) {
				return nil, repo.ErrNoRepositories
			}
			return nil, err
		}
		stored := f.Get(o.name)
		if stored == nil {
			return nil, errors.Errorf("no repo named %q found", o.name)
		}
		c := *stored
		e = &c
	case o.url != "":
		e.URL = o.url
	default:
		return nil, errors.New("either --repo or --url must be set")
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&e.StorageID, o.storageID)
	override(&e.RepositoryID, o.repositoryID)
	override(&e.Username, o.username)
	override(&e.Password, o.password)
	override(&e.CertFile, o.certFile)
	override(&e.KeyFile, o.keyFile)
	override(&e.CAFile, o.caFile)
	if o.insecureSkipTLSverify {
		e.InsecureSkipTLSverify = true
	}
	return e, nil
}

// requireLocation returns the entry's location, failing when either id is missing.
func requireLocation(e *repo.Entry) (repo.Location, error) {
	loc := e.Location()
	if loc.StorageID == "" || loc.RepositoryID == "" {
		return loc, errors.Errorf("repository %q needs a storage and a repository id (use --storage-id and --repository-id)", e.Name)
	}
	return loc, nil
}

// newClient builds a client for the entry using the global settings.
func newClient(e *repo.Entry) (*repo.Client, error) {
	return e.NewClient(
		repo.WithGetterOptions(getter.WithTimeout(settings.Timeout)),
		repo.WithLogger(slog.Default()),
	)
}

func isNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}

// compListRepos returns the configured repository names starting with prefix,
// skipping the names already given.
func compListRepos(prefix string, ignoredRepoNames []string) []string {
	var rNames []string

	f, err := repo.LoadFile(settings.RepositoryConfig)
	if err == nil && len(f.Repositories) > 0 {
		ignoredRepos := make(map[string]bool, len(ignoredRepoNames))
		for _, n := range ignoredRepoNames {
			ignoredRepos[n] = true
		}
		for _, r := range f.Repositories {
			if strings.HasPrefix(r.Name, prefix) && !ignoredRepos[r.Name] {
				rNames = append(rNames, fmt.Sprintf("%s\t%s", r.Name, r.URL))
			}
		}
	}
	return rNames
}

func noMoreArgsCompFunc(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// bindOutputFlag will add the output flag to the given command and bind the
// value to the given format pointer
func bindOutputFlag(cmd *cobra.Command, varRef *output.Format) {
	cmd.Flags().VarP(newOutputValue(output.Table, varRef), outputFlag, "o",
		fmt.Sprintf("prints the output in the specified format. Allowed values: %s", strings.Join(output.Formats(), ", ")))

	err := cmd.RegisterFlagCompletionFunc(outputFlag, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var formatNames []string
		for format, desc := range output.FormatsWithDesc() {
			formatNames = append(formatNames, fmt.Sprintf("%s\t%s", format, desc))
		}

		// Sort the results to get a deterministic order for the tests
		sort.Strings(formatNames)
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})

	if err != nil {
		log.Fatal(err)
	}
}

type outputValue output.Format

func newOutputValue(defaultValue output.Format, p *output.Format) *outputValue {
	*p = defaultValue
	return (*outputValue)(p)
}

func (o *outputValue) String() string {
	return string(*o)
}

func (o *outputValue) Type() string {
	return "format"
}

func (o *outputValue) Set(s string) error {
	outfmt, err := output.ParseFormat(s)
	if err != nil {
		return err
	}
	*o = outputValue(outfmt)
	return nil
}
