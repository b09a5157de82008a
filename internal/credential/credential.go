// Package credential reads and stores API keys in the OS keyring, with the
// environment taking precedence.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service is the keyring service name entries are stored under.
const Service = "minutes-flow"

// Well-known credential names.
const (
	OpenAIKey  = "OPENAI_API_KEY"
	GeminiKeys = "GEMINI_API_KEYS"
)

var ErrNotFound = errors.New("credential not found")

// Store gets and sets named secrets.
type Store interface {
	Get(name string) (string, error)
	Set(name, value string) error
}

type implStore struct {
	service string
	getenv  func(string) string
}

// New returns a Store backed by the OS keyring under service.
func New(service string) Store {
	return &implStore{service: service, getenv: os.Getenv}
}

// Get returns the environment value for name, else the keyring entry.
func (s *implStore) Get(name string) (string, error) {
	if v := strings.TrimSpace(s.getenv(name)); v != "" {
		return v, nil
	}
	v, err := keyring.Get(s.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %s: %w", name, err)
	}
	return v, nil
}

func (s *implStore) Set(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("empty value for %s", name)
	}
	if err := keyring.Set(s.service, name, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", name, err)
	}
	return nil
}

// Resolve returns explicit when set, otherwise the stored value. It never
// fails: a missing or unreadable credential yields "".
func Resolve(s Store, explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	v, err := s.Get(name)
	if err != nil {
		return ""
	}
	return v
}
