package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the commented YAML template written by InitConfig and
// InitConfigToPath. It mirrors the defaults from GetDefaultOptions so a
// freshly generated file is immediately loadable.
const configTemplate = `# dfsclient Configuration File
#
# Coordinator endpoints, in order. Operations try each endpoint in turn on
# infrastructure failures; a NotFound result is never retried against the
# next endpoint.
endpoints:
  - "dfs://localhost:8020"

# Default replication factor and block size requested for newly created files.
replication: 3
block_size: "128MiB"

coordinator_connect_timeout: "10s"
coordinator_read_timeout: "30s"
storage_connect_timeout: "5s"
storage_read_timeout: "30s"

client_name: "dfsclient"

logging:
  level: "INFO"
  format: "text"
  output: "stdout"

telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: false
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: "http://localhost:4040"

metrics:
  enabled: false

transfer:
  parallel_uploads: 16
  parallel_downloads: 16
  queue_path: "/tmp/dfsclient-transfer-queue"

metacache:
  enabled: false
  path: "/tmp/dfsclient-metacache.db"
  ttl: "30s"
`

// InitConfig writes a commented default configuration file to the default
// config path (see GetDefaultConfigPath), creating the config directory if
// needed. If force is false and a file already exists there, it returns an
// error rather than overwriting it.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a commented default configuration file to path,
// creating parent directories as needed. If force is false and a file
// already exists at path, it returns an error rather than overwriting it.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to check existing config file: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
