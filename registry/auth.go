package registry

import (
	"context"
	"errors"
	"strings"

	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// DockerCredentials returns a credential store that reads the Docker config
// (~/.docker/config.json) and its credential helpers.
func DockerCredentials() (credentials.Store, error) {
	return credentials.NewStoreFromDocker(credentials.StoreOptions{})
}

// StaticCredentials returns a read-only credential store holding a single
// username and password for host.
func StaticCredentials(host, username, password string) credentials.Store {
	return &staticStore{
		host: normalizeHost(host),
		cred: auth.Credential{Username: username, Password: password},
	}
}

// staticStore implements credentials.Store for one registry host.
type staticStore struct {
	host string
	cred auth.Credential
}

func (s *staticStore) Get(_ context.Context, serverAddress string) (auth.Credential, error) {
	if normalizeHost(serverAddress) == s.host {
		return s.cred, nil
	}
	return auth.EmptyCredential, nil
}

func (s *staticStore) Put(_ context.Context, _ string, _ auth.Credential) error {
	return errors.New("static credential store is read-only")
}

func (s *staticStore) Delete(_ context.Context, _ string) error {
	return errors.New("static credential store is read-only")
}

// normalizeHost strips the scheme and path from a server address, keeping
// the port for credential matching.
func normalizeHost(addr string) string {
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr, _, _ = strings.Cut(addr, "/")
	return addr
}
