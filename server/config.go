package server

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the chat server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen_addr"`

	// Upstream LLM provider URL (e.g., "http://localhost:11434").
	// When empty only the echo provider is available.
	UpstreamURL string `toml:"upstream_url"`

	// DBPath is the path to the SQLite database file.
	// Empty means in-memory storage.
	DBPath string `toml:"db_path"`

	// DefaultProvider answers generate requests that carry no
	// ?provider= override ("echo" or "ollama").
	DefaultProvider string `toml:"default_provider"`

	// Models answering variant A and variant B requests. They may be
	// the same model: with nonzero temperature the two streams still
	// diverge.
	ModelA string `toml:"model_a"`
	ModelB string `toml:"model_b"`

	// Debug enables debug logging and the pprof endpoints.
	Debug bool `toml:"debug"`
}

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return config.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.DefaultProvider == "" {
		c.DefaultProvider = "echo"
	}
	return c
}
