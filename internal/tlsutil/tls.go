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

package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Options collects the PEM material for a repository client TLS config.
type Options struct {
	insecureSkipTLSVerify     bool
	serverName                string
	certPEMBlock, keyPEMBlock []byte
	caPEMBlock                []byte
}

type Option func(options *Options) error

func WithInsecureSkipVerify(insecureSkipTLSVerify bool) Option {
	return func(options *Options) error {
		options.insecureSkipTLSVerify = insecureSkipTLSVerify
		return nil
	}
}

// WithServerName pins the SNI name, used when the repository is reached
// through an address that differs from its certificate.
func WithServerName(name string) Option {
	return func(options *Options) error {
		options.serverName = name
		return nil
	}
}

// WithCertKeyPairFiles loads a client certificate. Both files empty is a no-op.
func WithCertKeyPairFiles(certFile, keyFile string) Option {
	return func(options *Options) error {
		if certFile == "" && keyFile == "" {
			return nil
		}

		certPEMBlock, err := os.ReadFile(certFile)
		if err != nil {
			return errors.Wrapf(err, "unable to read cert file %q", certFile)
		}

		keyPEMBlock, err := os.ReadFile(keyFile)
		if err != nil {
			return errors.Wrapf(err, "unable to read key file %q", keyFile)
		}

		options.certPEMBlock = certPEMBlock
		options.keyPEMBlock = keyPEMBlock
		return nil
	}
}

func WithCAFile(caFile string) Option {
	return func(options *Options) error {
		if caFile == "" {
			return nil
		}

		caPEMBlock, err := os.ReadFile(caFile)
		if err != nil {
			return errors.Wrapf(err, "can't read CA file %q", caFile)
		}

		options.caPEMBlock = caPEMBlock
		return nil
	}
}

// NewTLSConfig builds a client TLS configuration. Every option error is
// reported, not only the first one.
func NewTLSConfig(options ...Option) (*tls.Config, error) {
	to := Options{}

	var errs *multierror.Error
	for _, option := range options {
		if err := option(&to); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	config := tls.Config{
		InsecureSkipVerify: to.insecureSkipTLSVerify, // #nosec G402 opt-in via --insecure-skip-tls-verify
		ServerName:         to.serverName,
		MinVersion:         tls.VersionTLS12,
	}

	if len(to.certPEMBlock) > 0 && len(to.keyPEMBlock) > 0 {
		cert, err := tls.X509KeyPair(to.certPEMBlock, to.keyPEMBlock)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load cert from key pair")
		}
		config.Certificates = []tls.Certificate{cert}
	}

	if len(to.caPEMBlock) > 0 {
		cp := x509.NewCertPool()
		if !cp.AppendCertsFromPEM(to.caPEMBlock) {
			return nil, errors.New("failed to append certificates from pem block")
		}
		config.RootCAs = cp
	}

	return &config, nil
}
