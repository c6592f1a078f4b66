package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Credentials identify the account backing a remote table store.
type Credentials struct {
	Account string `json:"account" yaml:"account"`
	Key     string `json:"key" yaml:"key"`
}

// Empty reports whether no credentials were provided.
func (c Credentials) Empty() bool { return c.Account == "" && c.Key == "" }

// Config is the sink configuration loaded from file/env.
type Config struct {
	ContainerName  string      `json:"containerName" yaml:"containerName"`
	PartitionKey   string      `json:"partitionKey" yaml:"partitionKey"`
	Level          string      `json:"level" yaml:"level"`
	BatchSize      int         `json:"batchSize" yaml:"batchSize"`
	IdleTimeoutMs  int         `json:"idleTimeoutMs" yaml:"idleTimeoutMs"`
	Silent         bool        `json:"silent" yaml:"silent"`
	NestedMetadata bool        `json:"nestedMetadata" yaml:"nestedMetadata"`
	UseLocalStore  bool        `json:"useLocalStore" yaml:"useLocalStore"`
	DataDir        string      `json:"dataDir" yaml:"dataDir"`
	Fsync          string      `json:"fsync" yaml:"fsync"` // always | interval | never
	Credentials    Credentials `json:"credentials" yaml:"credentials"`
}

// IdleTimeout returns the idle-flush window as a duration.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMs) * time.Millisecond
}

// Default returns built-in defaults. The partition key falls back to the
// deployment environment name so every instance of one deployment shares a
// partition.
func Default() Config {
	part := os.Getenv("TABLESINK_ENV")
	if part == "" {
		part = "development"
	}
	return Config{
		ContainerName: "log",
		PartitionKey:  part,
		Level:         "info",
		BatchSize:     100,
		IdleTimeoutMs: 3000,
		Fsync:         "interval",
	}
}

// Load reads configuration from a JSON or YAML file (by extension),
// overlaying the defaults. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
