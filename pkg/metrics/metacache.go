package metrics

import "time"

// MetacacheMetrics provides observability for the optional local stat/list
// cache that shortcuts repeat coordinator lookups.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
type MetacacheMetrics interface {
	// ObserveLookup records a cache lookup, hit or miss, and how long the
	// SQLite lookup took to resolve. A later backfill of a missed entry is
	// not included.
	ObserveLookup(operation string, hit bool, duration time.Duration)

	// RecordInvalidation records an entry being invalidated, e.g. after a
	// create/delete/mkdir against the same path.
	RecordInvalidation(operation string)

	// RecordExpiry records an entry being dropped for exceeding its TTL.
	RecordExpiry()

	// RecordEntryCount updates the current number of cached entries.
	RecordEntryCount(count int64)
}
