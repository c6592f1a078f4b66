package config

import (
	"os"
	"strconv"
)

// FromEnv overlays TABLESINK_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("TABLESINK_CONTAINER_NAME"); v != "" {
		cfg.ContainerName = v
	}
	if v := os.Getenv("TABLESINK_PARTITION_KEY"); v != "" {
		cfg.PartitionKey = v
	}
	if v := os.Getenv("TABLESINK_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("TABLESINK_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("TABLESINK_IDLE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IdleTimeoutMs = n
		}
	}
	if v := os.Getenv("TABLESINK_SILENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Silent = b
		}
	}
	if v := os.Getenv("TABLESINK_NESTED_METADATA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NestedMetadata = b
		}
	}
	if v := os.Getenv("TABLESINK_USE_LOCAL_STORE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseLocalStore = b
		}
	}
	if v := os.Getenv("TABLESINK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("TABLESINK_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("TABLESINK_ACCOUNT"); v != "" {
		cfg.Credentials.Account = v
	}
	if v := os.Getenv("TABLESINK_ACCOUNT_KEY"); v != "" {
		cfg.Credentials.Key = v
	}
}
