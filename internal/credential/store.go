// Package credential resolves provider API keys by name.  Keys are looked up
// per request so a key rotated through moviesctl takes effect immediately.
package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iliyamo/movies/internal/repository"
)

// ErrNotFound is returned when no store holds a key for the requested name.
var ErrNotFound = errors.New("credential not found")

// Store looks up a secret by name.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
}

// DBStore reads encrypted keys from the api_keys table.
type DBStore struct {
	repo   repository.APIKeyRepository
	cipher *Cipher
}

func NewDBStore(repo repository.APIKeyRepository, cipher *Cipher) *DBStore {
	return &DBStore{repo: repo, cipher: cipher}
}

func (s *DBStore) Get(ctx context.Context, name string) (string, error) {
	sealed, err := s.repo.Get(ctx, name)
	if errors.Is(err, repository.ErrAPIKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load api key %q: %w", name, err)
	}
	return s.cipher.Open(name, sealed)
}

// Set encrypts and stores value under name.
func (s *DBStore) Set(ctx context.Context, name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("api key value is empty")
	}
	sealed, err := s.cipher.Seal(name, value)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, name, sealed)
}

// Delete removes the key stored under name.
func (s *DBStore) Delete(ctx context.Context, name string) error {
	err := s.repo.Delete(ctx, name)
	if errors.Is(err, repository.ErrAPIKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// EnvStore reads keys from environment variables named <NAME>_API_KEY,
// e.g. TMDB_API_KEY for "tmdb".
type EnvStore struct {
	lookup func(string) (string, bool)
}

func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// EnvVar returns the variable consulted for name.
func EnvVar(name string) string {
	return strings.ToUpper(name) + "_API_KEY"
}

func (s *EnvStore) Get(_ context.Context, name string) (string, error) {
	v, ok := s.lookup(EnvVar(name))
	if !ok || strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return strings.TrimSpace(v), nil
}

// Chain consults stores in order and returns the first key found.
type Chain []Store

func (c Chain) Get(ctx context.Context, name string) (string, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		v, err := s.Get(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return v, err
	}
	return "", ErrNotFound
}
