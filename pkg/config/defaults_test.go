package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	opts := &Options{}
	ApplyDefaults(opts)

	if opts.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", opts.Logging.Level)
	}
	if opts.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", opts.Logging.Format)
	}
	if opts.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", opts.Logging.Output)
	}
}

func TestApplyDefaults_Timeouts(t *testing.T) {
	opts := &Options{}
	ApplyDefaults(opts)

	if opts.CoordinatorConnectTimeout != 10*time.Second {
		t.Errorf("Expected default coordinator connect timeout 10s, got %v", opts.CoordinatorConnectTimeout)
	}
	if opts.CoordinatorReadTimeout != 30*time.Second {
		t.Errorf("Expected default coordinator read timeout 30s, got %v", opts.CoordinatorReadTimeout)
	}
	if opts.StorageConnectTimeout != 5*time.Second {
		t.Errorf("Expected default storage connect timeout 5s, got %v", opts.StorageConnectTimeout)
	}
	if opts.StorageReadTimeout != 30*time.Second {
		t.Errorf("Expected default storage read timeout 30s, got %v", opts.StorageReadTimeout)
	}
}

func TestApplyDefaults_ReplicationAndBlockSize(t *testing.T) {
	opts := &Options{}
	ApplyDefaults(opts)

	if opts.Replication != 3 {
		t.Errorf("Expected default replication 3, got %d", opts.Replication)
	}
	if opts.BlockSize == 0 {
		t.Error("Expected non-zero default block size")
	}
}

func TestApplyDefaults_Transfer(t *testing.T) {
	opts := &Options{}
	ApplyDefaults(opts)

	if opts.Transfer.ParallelUploads != 16 {
		t.Errorf("Expected default parallel uploads 16, got %d", opts.Transfer.ParallelUploads)
	}
	if opts.Transfer.ParallelDownloads != 16 {
		t.Errorf("Expected default parallel downloads 16, got %d", opts.Transfer.ParallelDownloads)
	}
	if opts.Transfer.QueuePath == "" {
		t.Error("Expected default transfer queue path")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	opts := &Options{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/dfsclient.log",
		},
		Replication: 5,
		ClientName:  "my-app",
	}

	ApplyDefaults(opts)

	if opts.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", opts.Logging.Level)
	}
	if opts.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", opts.Logging.Format)
	}
	if opts.Logging.Output != "/var/log/dfsclient.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", opts.Logging.Output)
	}
	if opts.Replication != 5 {
		t.Errorf("Expected explicit replication 5 to be preserved, got %d", opts.Replication)
	}
	if opts.ClientName != "my-app" {
		t.Errorf("Expected explicit client name to be preserved, got %q", opts.ClientName)
	}
}

func TestGetDefaultOptions_IsValid(t *testing.T) {
	opts := GetDefaultOptions()

	if err := Validate(opts); err != nil {
		t.Errorf("Default options should be valid, got error: %v", err)
	}
}

func TestGetDefaultOptions_HasRequiredFields(t *testing.T) {
	opts := GetDefaultOptions()

	if opts.Logging.Level == "" {
		t.Error("Default options missing logging level")
	}
	if len(opts.Endpoints) == 0 {
		t.Error("Default options missing endpoints")
	}
	if opts.ClientName == "" {
		t.Error("Default options missing client name")
	}
}
