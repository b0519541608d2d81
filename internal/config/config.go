// Package config resolves where the tracker server lives.
// It implements a simple interface with multiple providers following the
// "deep modules" principle - simple interface, complex implementation hidden.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// DefaultServerURL is the local development server address used when
// nothing else is configured.
const DefaultServerURL = "http://localhost:3333"

// EnvServerURL is the environment variable consulted for the server
// address.
const EnvServerURL = "TIX_SERVER"

// ServerProvider defines the interface for obtaining the tracker server URL.
// Implementations may use different sources (command-line flags,
// environment variables, built-in defaults).
type ServerProvider interface {
	ServerURL() (string, error)
}

// FlagProvider supplies the URL given on the command line. An empty value
// means the flag was not passed.
type FlagProvider struct {
	Value string
}

// ServerURL returns the flag value, or an error when the flag was not set.
func (f *FlagProvider) ServerURL() (string, error) {
	if strings.TrimSpace(f.Value) == "" {
		return "", errors.New("--server flag not set")
	}
	return f.Value, nil
}

// EnvProvider obtains the server URL from the TIX_SERVER environment
// variable.
type EnvProvider struct{}

// ServerURL reads TIX_SERVER. Returns an error if the variable is not set
// or is empty.
func (e *EnvProvider) ServerURL() (string, error) {
	v := os.Getenv(EnvServerURL)
	if v == "" {
		return "", fmt.Errorf("%s environment variable not set or empty", EnvServerURL)
	}
	return v, nil
}

// ResolveServerURL resolves the server address using the following strategy:
// 1. The --server command-line flag when given
// 2. The TIX_SERVER environment variable
// 3. The built-in local development default
//
// The winning value must parse as an absolute http(s) URL.
func ResolveServerURL(flagValue string) (string, error) {
	providers := []ServerProvider{
		&FlagProvider{Value: flagValue},
		&EnvProvider{},
	}

	raw := DefaultServerURL
	for _, p := range providers {
		if v, err := p.ServerURL(); err == nil {
			raw = v
			break
		}
	}

	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: expected an absolute http(s) address", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	return raw, nil
}
