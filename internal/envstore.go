package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvStore is the on-disk key-value file remembering the last used URL and defaults
type EnvStore struct {
	path string
}

// NewEnvStore creates a store for the given .env path
func NewEnvStore(path string) *EnvStore {
	if path == "" {
		path = DefaultEnvFile
	}
	return &EnvStore{path: path}
}

// Path returns the location of the store
func (s *EnvStore) Path() string {
	return s.path
}

// Read returns all key-value pairs; a missing file yields an empty map
func (s *EnvStore) Read() (map[string]string, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", s.path, err)
	}
	return values, nil
}

// Set writes a single key, keeping every other key in the file
func (s *EnvStore) Set(key, value string) error {
	values, err := s.Read()
	if err != nil {
		return err
	}
	values[key] = value

	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("writing env file %s: %w", s.path, err)
	}
	return nil
}
