// Package users authenticates against a static credentials document of the
// form {"alice": {"password": "..."}}.
package users

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ConfigurationError means the credentials document is missing or malformed.
type ConfigurationError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Source, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Source returns the raw credentials document and whether it was present.
type Source interface {
	Name() string
	Raw() (string, bool)
}

type envSource string

// EnvSource reads the document from an environment variable on every call.
func EnvSource(key string) Source {
	return envSource(key)
}

func (s envSource) Name() string { return string(s) }

func (s envSource) Raw() (string, bool) {
	v, ok := os.LookupEnv(string(s))
	return v, ok && strings.TrimSpace(v) != ""
}

type staticSource struct {
	name string
	raw  string
}

// StaticSource serves a fixed document, mostly useful in tests.
func StaticSource(name, raw string) Source {
	return staticSource{name: name, raw: raw}
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Raw() (string, bool) {
	return s.raw, strings.TrimSpace(s.raw) != ""
}

type credential struct {
	Password *string `json:"password"`
}

type Directory struct {
	source Source
}

func NewDirectory(source Source) *Directory {
	return &Directory{source: source}
}

// load decodes the document into username -> stored password. Every record
// must carry a non-empty password string.
func (d *Directory) load() (map[string]string, error) {
	raw, ok := d.source.Raw()
	if !ok {
		return nil, &ConfigurationError{Source: d.source.Name(), Reason: "is not set"}
	}

	var records map[string]*credential
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, &ConfigurationError{Source: d.source.Name(), Reason: "is not valid JSON", Err: err}
	}
	if records == nil {
		return nil, &ConfigurationError{Source: d.source.Name(), Reason: "must be a JSON object"}
	}

	creds := make(map[string]string, len(records))
	for name, rec := range records {
		if rec == nil || rec.Password == nil || *rec.Password == "" {
			return nil, &ConfigurationError{Source: d.source.Name(), Reason: fmt.Sprintf("user %q has no password", name)}
		}
		creds[name] = *rec.Password
	}
	return creds, nil
}

// Check validates the document without authenticating anyone.
func (d *Directory) Check() error {
	_, err := d.load()
	return err
}

// Authenticate reports whether username exists and password matches it.
// Stored bcrypt hashes are verified as hashes; anything else is compared
// as plain text in constant time.
func (d *Directory) Authenticate(username, password string) (bool, error) {
	creds, err := d.load()
	if err != nil {
		return false, err
	}

	stored, ok := creds[username]
	if !ok || username == "" {
		return false, nil
	}
	return matches(stored, password), nil
}

func matches(stored, given string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// HashPassword returns a bcrypt hash suitable for the credentials document.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
