package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API     APIConfig
	Client  ClientConfig
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Log     LogConfig
}

// APIConfig locates the remote profile service.
type APIConfig struct {
	BaseURL string
}

type ClientConfig struct {
	Timeout time.Duration
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type AuthConfig struct {
	TokenTTL time.Duration
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:3003",
		},
		Client: ClientConfig{
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Port: 3003,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a .env file in the working directory, the
// JSON config file at $XDG_CONFIG_HOME/folio/config.json, and FOLIO_*
// environment variables, in increasing order of precedence.
//
// Credentials are not part of Config; see SecretStore.
func Load() (Config, error) {
	loadDotEnv(".env")
	return loadWith(newPlatformBackend())
}

// loadDotEnv exports variables from path without overriding ones already set.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load env file", "path", path, "error", err)
	}
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: must be an absolute URL", cfg.API.BaseURL)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	if cfg.Client.Timeout < 0 {
		return fmt.Errorf("invalid client.timeout %s: must not be negative", cfg.Client.Timeout)
	}
	return nil
}
