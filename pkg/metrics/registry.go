// Package metrics defines Prometheus-shaped observability interfaces for
// the DFS client's major subsystems: coordinator RPC, storage-node block
// I/O, bulk transfer jobs, and the local metacache. Each interface is
// optional - implementations are nil-safe, so passing nil disables metrics
// collection with zero overhead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the global Prometheus registry used by all metrics
// constructors in this package and its prometheus subpackage. Call this
// once during client startup before constructing any metrics-aware
// component. If enabled is false, GetRegistry returns nil and IsEnabled
// returns false, causing constructors to return nil.
func InitRegistry(enabled_ bool) *prometheus.Registry {
	enabled = enabled_
	if !enabled {
		registry = nil
		return nil
	}

	registry = prometheus.NewRegistry()
	return registry
}

// IsEnabled reports whether metrics collection is enabled.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the global Prometheus registry. Callers must only
// invoke this after InitRegistry(true); it returns nil otherwise.
func GetRegistry() *prometheus.Registry {
	return registry
}
