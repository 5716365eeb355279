package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/marmos91/dfsclient/internal/bytesize"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Options represents the complete configuration for a DFS client.
//
// This structure captures static configuration for connecting to a
// coordinator cluster and storage nodes:
//   - Coordinator endpoints and retry/timeout behavior
//   - Default replication factor and block size for newly created files
//   - Logging configuration
//   - Telemetry/tracing configuration
//   - Metrics configuration
//   - Bulk transfer worker pool sizing and resumable-job persistence
//   - Optional local metadata cache
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DFSCLIENT_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Options struct {
	// Endpoints is the ordered list of coordinator URIs, each shaped
	// "dfs://host:port". Operations try each endpoint in order on
	// Infrastructure failures; a NotFound result is never retried.
	Endpoints []string `mapstructure:"endpoints" validate:"required,min=1,dive,required" yaml:"endpoints"`

	// CoordinatorConnectTimeout bounds dialing a coordinator endpoint.
	CoordinatorConnectTimeout time.Duration `mapstructure:"coordinator_connect_timeout" validate:"required,gt=0" yaml:"coordinator_connect_timeout"`

	// CoordinatorReadTimeout bounds a single coordinator RPC round trip.
	CoordinatorReadTimeout time.Duration `mapstructure:"coordinator_read_timeout" validate:"required,gt=0" yaml:"coordinator_read_timeout"`

	// StorageConnectTimeout bounds dialing a storage-node data endpoint.
	StorageConnectTimeout time.Duration `mapstructure:"storage_connect_timeout" validate:"required,gt=0" yaml:"storage_connect_timeout"`

	// StorageReadTimeout bounds a single packet read/write on a storage-node
	// connection.
	StorageReadTimeout time.Duration `mapstructure:"storage_read_timeout" validate:"required,gt=0" yaml:"storage_read_timeout"`

	// Replication is the default replication factor requested for newly
	// created files.
	Replication uint32 `mapstructure:"replication" validate:"required,gt=0,lte=512" yaml:"replication"`

	// BlockSize is the default block size requested for newly created files.
	BlockSize bytesize.ByteSize `mapstructure:"block_size" validate:"required" yaml:"block_size"`

	// ClientName identifies this client to the coordinator and storage
	// nodes, e.g. in pipeline write requests.
	ClientName string `mapstructure:"client_name" validate:"required" yaml:"client_name"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics registration configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Transfer configures the bulk transfer manager's worker pool and
	// resumable job queue.
	Transfer TransferConfig `mapstructure:"transfer" yaml:"transfer"`

	// Metacache configures the optional local stat/list cache. Disabled by
	// default; the composite client is correct with or without it.
	Metacache MetacacheConfig `mapstructure:"metacache" yaml:"metacache"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use an insecure (non-TLS) connection.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus metrics registration.
// When Enabled is false, metric recording calls are no-ops.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// TransferConfig configures the bulk transfer manager.
type TransferConfig struct {
	// ParallelUploads bounds concurrent single-file uploads within a
	// directory-level bulk transfer.
	ParallelUploads int `mapstructure:"parallel_uploads" validate:"omitempty,gt=0" yaml:"parallel_uploads"`

	// ParallelDownloads bounds concurrent single-file downloads.
	ParallelDownloads int `mapstructure:"parallel_downloads" validate:"omitempty,gt=0" yaml:"parallel_downloads"`

	// QueuePath is the directory for the embedded Badger job queue that
	// records per-file results of each bulk transfer under its own job id.
	QueuePath string `mapstructure:"queue_path" yaml:"queue_path"`
}

// MetacacheConfig configures the optional local stat/list cache.
type MetacacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `mapstructure:"path" yaml:"path"`

	// TTL is how long a cached stat/list entry remains valid.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DFSCLIENT_*)
//  2. Configuration file
//  3. Default values
//
// When no configuration file is found, Load returns GetDefaultOptions()
// as is; environment variables are not applied in that case.
func Load(configPath string) (*Options, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		opts := GetDefaultOptions()
		return opts, nil
	}

	var opts Options
	if err := v.Unmarshal(&opts, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&opts)

	if err := Validate(&opts); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &opts, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(opts *Options, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validatorInstance is shared across calls; go-playground/validator/v10
// caches struct metadata internally so reuse avoids repeated reflection.
var validatorInstance = validator.New()

// Validate checks Options against its struct tags and cross-field rules.
func Validate(opts *Options) error {
	if err := validatorInstance.Struct(opts); err != nil {
		return err
	}
	for _, ep := range opts.Endpoints {
		if !strings.HasPrefix(ep, "dfs://") {
			return fmt.Errorf("endpoint %q must have scheme dfs://", ep)
		}
	}
	if opts.Telemetry.Enabled && opts.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("DFSCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for ByteSize and
// time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and integers to bytesize.ByteSize,
// enabling config files to use human-readable sizes like "128Mi", "64MB".
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration, enabling config
// files to use human-readable durations like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dfsclient")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dfsclient")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
