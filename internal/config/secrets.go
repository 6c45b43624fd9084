package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Credential names held by the secret store.
const (
	SecretToken      = "token"
	SecretSigningKey = "signing_key"
)

const secretsService = "folio"

// ErrSecretNotFound is returned when a credential has not been stored.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore reads and writes named credentials outside the config file.
type SecretStore interface {
	Get(name string) (string, error)
	Set(name, value string) error
}

// FileSecrets keeps credentials in a 0600 JSON file under the data
// directory. A FOLIO_<NAME> environment variable takes precedence over the
// file for reads.
type FileSecrets struct {
	path string
	mu   sync.Mutex
}

// NewSecretStore returns the file-backed store at the default location.
func NewSecretStore() *FileSecrets {
	return &FileSecrets{path: secretsFilePath()}
}

// NewSecretStoreAt returns a file-backed store at path.
func NewSecretStoreAt(path string) *FileSecrets {
	return &FileSecrets{path: path}
}

func secretsFilePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "folio", "secrets.json")
}

func secretEnv(name string) string {
	return "FOLIO_" + strings.ToUpper(name)
}

func (f *FileSecrets) Get(name string) (string, error) {
	if v := os.Getenv(secretEnv(name)); v != "" {
		return v, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	secrets, err := f.read()
	if err != nil {
		return "", err
	}
	val, ok := secrets[secretsService][name]
	if !ok || val == "" {
		return "", fmt.Errorf("%w: %q (set it with `folio token set` or %s)", ErrSecretNotFound, name, secretEnv(name))
	}
	return val, nil
}

func (f *FileSecrets) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	secrets, err := f.read()
	if err != nil {
		return err
	}
	if secrets[secretsService] == nil {
		secrets[secretsService] = make(map[string]string)
	}
	secrets[secretsService][name] = value

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating secrets dir: %w", err)
	}
	out, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, out, 0o600)
}

func (f *FileSecrets) read() (map[string]map[string]string, error) {
	secrets := make(map[string]map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return secrets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets file: %w", err)
	}
	if err := json.Unmarshal(data, &secrets); err != nil {
		return nil, fmt.Errorf("parsing secrets file: %w", err)
	}
	return secrets, nil
}

// TokenProvider returns a credential function that reads the bearer token
// from s each time it is called, so a token replaced on disk is picked up
// by the next request.
func TokenProvider(s SecretStore) func() (string, error) {
	return func() (string, error) {
		return s.Get(SecretToken)
	}
}

// SigningKey returns the server's token signing key, generating and storing
// a random 32-byte key on first use.
func SigningKey(s SecretStore) ([]byte, error) {
	v, err := s.Get(SecretSigningKey)
	if err == nil {
		key, decErr := base64.StdEncoding.DecodeString(v)
		if decErr != nil {
			return nil, fmt.Errorf("decoding signing key: %w", decErr)
		}
		return key, nil
	}
	if !errors.Is(err, ErrSecretNotFound) {
		return nil, err
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	if err := s.Set(SecretSigningKey, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("storing signing key: %w", err)
	}
	return key, nil
}
