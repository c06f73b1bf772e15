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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"strongbox.io/client/pkg/cmd/require"
	"strongbox.io/client/pkg/repo"
)

type repoAddOptions struct {
	name                  string
	url                   string
	storageID             string
	repositoryID          string
	username              string
	password              string
	passwordFromStdinOpt  bool
	forceUpdate           bool
	skipCheck             bool
	certFile              string
	keyFile               string
	caFile                string
	insecureSkipTLSverify bool

	repoFile  string
	repoCache string
}

func newRepoAddCmd(out io.Writer) *cobra.Command {
	o := &repoAddOptions{}

	cmd := &cobra.Command{
		Use:   "add [NAME] [URL]",
		Short: "add an artifact repository",
		Args:  require.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 1 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			o.name = args[0]
			o.url = args[1]
			o.repoFile = settings.RepositoryConfig
			o.repoCache = settings.RepositoryCache

			return o.run(cmd.Context(), out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.storageID, "storage-id", "", "storage holding the repository")
	f.StringVar(&o.repositoryID, "repository-id", "", "repository inside the storage")
	f.StringVar(&o.username, "username", "", "repository username")
	f.StringVar(&o.password, "password", "", "repository password")
	f.BoolVarP(&o.passwordFromStdinOpt, "password-stdin", "", false, "read repository password from stdin")
	f.BoolVar(&o.forceUpdate, "force-update", false, "replace (overwrite) the repo if it already exists")
	f.BoolVar(&o.skipCheck, "no-check", false, "do not contact the server before saving the repository")
	f.StringVar(&o.certFile, "cert-file", "", "identify HTTPS client using this SSL certificate file")
	f.StringVar(&o.keyFile, "key-file", "", "identify HTTPS client using this SSL key file")
	f.StringVar(&o.caFile, "ca-file", "", "verify certificates of HTTPS-enabled servers using this CA bundle")
	f.BoolVar(&o.insecureSkipTLSverify, "insecure-skip-tls-verify", false, "skip tls certificate checks for the repository")

	return cmd
}

func (o *repoAddOptions) run(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Ensure the file directory exists as it is required for file locking
	if err := os.MkdirAll(filepath.Dir(o.repoFile), os.ModePerm); err != nil && !os.IsExist(err) {
		return err
	}

	// Acquire a file lock for process synchronization
	repoFileExt := filepath.Ext(o.repoFile)
	var lockPath string
	if len(repoFileExt) > 0 && len(repoFileExt) < len(o.repoFile) {
		lockPath = strings.TrimSuffix(o.repoFile, repoFileExt) + ".lock"
	} else {
		lockPath = o.repoFile + ".lock"
	}
	fileLock := flock.New(lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	locked, err := fileLock.TryLockContext(lockCtx, time.Second)
	if err == nil && locked {
		defer fileLock.Unlock()
	}
	if err != nil {
		return err
	}

	f, err := repo.LoadFile(o.repoFile)
	if err != nil {
		if !isNotExist(err) {
			return err
		}
		f = repo.NewFile()
	}

	if o.username != "" && o.password == "" {
		if o.passwordFromStdinOpt {
			passwordFromStdin, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			password := strings.TrimSuffix(string(passwordFromStdin), "\n")
			password = strings.TrimSuffix(password, "\r")
			o.password = password
		} else {
			fd := int(os.Stdin.Fd())
			fmt.Fprint(out, "Password: ")
			password, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			o.password = string(password)
		}
	}

	c := repo.Entry{
		Name:                  o.name,
		URL:                   strings.TrimRight(o.url, "/"),
		StorageID:             o.storageID,
		RepositoryID:          o.repositoryID,
		Username:              o.username,
		Password:              o.password,
		CertFile:              o.certFile,
		KeyFile:               o.keyFile,
		CAFile:                o.caFile,
		InsecureSkipTLSverify: o.insecureSkipTLSverify,
	}

	// Check if the repo name is legal
	if strings.ContainsAny(o.name, `/\`) {
		return errors.Errorf("repository name (%s) contains a path separator, please specify a different name without '/' or '\\'", o.name)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	// If the repo exists do one of two things:
	// 1. If the configuration for the name is the same continue without error
	// 2. When the config is different require --force-update
	if !o.forceUpdate && f.Has(o.name) {
		existing := f.Get(o.name)
		if c != *existing {
			return errors.Errorf("repository name (%s) already exists, please specify a different name", o.name)
		}

		fmt.Fprintf(out, "%q already exists with the same configuration, skipping\n", o.name)
		return nil
	}

	if !o.skipCheck {
		if err := checkReachable(ctx, &c); err != nil {
			return errors.Wrapf(err, "looks like %q is not a reachable artifact repository", o.url)
		}
	}

	f.Update(&c)

	if err := f.WriteFile(o.repoFile, 0600); err != nil {
		return err
	}
	fmt.Fprintf(out, "%q has been added to your repositories\n", o.name)
	return nil
}

// checkReachable makes one request to the repository root. Any HTTP answer
// counts as reachable.
func checkReachable(ctx context.Context, e *repo.Entry) error {
	client, err := newClient(e)
	if err != nil {
		return err
	}
	defer client.Close()

	root := "/"
	if e.StorageID != "" && e.RepositoryID != "" {
		root = e.Location().ResourcePath("")
	}
	_, err = client.Exists(ctx, root)
	return err
}
