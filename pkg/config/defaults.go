package config

import (
	"strings"
	"time"

	"github.com/marmos91/dfsclient/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults, matching
// the wire-protocol defaults the original distributed file system uses.
func ApplyDefaults(opts *Options) {
	applyLoggingDefaults(&opts.Logging)
	applyTelemetryDefaults(&opts.Telemetry)
	applyTransferDefaults(&opts.Transfer)
	applyMetacacheDefaults(&opts.Metacache)

	if opts.CoordinatorConnectTimeout == 0 {
		opts.CoordinatorConnectTimeout = 10 * time.Second
	}
	if opts.CoordinatorReadTimeout == 0 {
		opts.CoordinatorReadTimeout = 30 * time.Second
	}
	if opts.StorageConnectTimeout == 0 {
		opts.StorageConnectTimeout = 5 * time.Second
	}
	if opts.StorageReadTimeout == 0 {
		opts.StorageReadTimeout = 30 * time.Second
	}
	if opts.Replication == 0 {
		opts.Replication = 3
	}
	if opts.BlockSize == 0 {
		opts.BlockSize = 128 * bytesize.MiB
	}
	if opts.ClientName == "" {
		opts.ClientName = "dfsclient"
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

// applyTransferDefaults sets bulk transfer manager defaults.
func applyTransferDefaults(cfg *TransferConfig) {
	if cfg.ParallelUploads == 0 {
		cfg.ParallelUploads = 16
	}
	if cfg.ParallelDownloads == 0 {
		cfg.ParallelDownloads = 16
	}
	if cfg.QueuePath == "" {
		cfg.QueuePath = "/tmp/dfsclient-transfer-queue"
	}
}

// applyMetacacheDefaults sets local metadata cache defaults.
// Metacache stays disabled unless explicitly turned on; these defaults
// only matter once Enabled is true.
func applyMetacacheDefaults(cfg *MetacacheConfig) {
	if cfg.Path == "" {
		cfg.Path = "/tmp/dfsclient-metacache.db"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Second
	}
}

// GetDefaultOptions returns Options with all default values applied.
// Useful for generating sample configuration files, testing, and
// documentation.
func GetDefaultOptions() *Options {
	opts := &Options{
		Endpoints: []string{"dfs://localhost:8020"},
	}
	ApplyDefaults(opts)
	return opts
}
