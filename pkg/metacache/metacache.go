// Package metacache implements an optional, local, TTL'd cache of
// coordinator stat/list results backed by an embedded SQLite file. It is
// purely additive: the composite file client (pkg/dfsclient) is correct
// with or without it, just with more coordinator round trips when it is
// disabled or an entry has expired.
//
// The cache stores opaque, caller-encoded payloads rather than a typed
// file summary so this package never needs to import pkg/dfsclient.
package metacache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/dfsclient/internal/logger"
	"github.com/marmos91/dfsclient/pkg/metrics"
)

// Config configures a Cache.
type Config struct {
	// Path is the SQLite database file path.
	Path string
	// TTL is how long a cached entry remains valid after it is written.
	TTL time.Duration
}

// Cache is a local stat/list cache backed by SQLite. It is safe for
// concurrent use.
type Cache struct {
	db      *gorm.DB
	ttl     time.Duration
	metrics metrics.MetacacheMetrics
}

// New opens (creating if necessary) the SQLite database at cfg.Path, runs
// the embedded schema migrations against it, and returns a ready Cache.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Path == "" {
		return nil, errors.New("metacache: path must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("metacache: ttl must be positive")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("metacache: create directory: %w", err)
		}
	}

	if err := runMigrations(ctx, cfg.Path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("metacache: open database: %w", err)
	}

	return &Cache{db: db, ttl: cfg.TTL}, nil
}

// WithMetrics attaches a metrics sink; nil disables metrics collection.
func (c *Cache) WithMetrics(m metrics.MetacacheMetrics) *Cache {
	c.metrics = m
	return c
}

// Close releases the underlying SQLite connection.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetStat returns the cached payload for path's stat() result, if present
// and not expired.
func (c *Cache) GetStat(ctx context.Context, path string) ([]byte, bool) {
	return c.get(ctx, "getFileInfo", &statRow{}, path)
}

// PutStat caches payload as path's stat() result.
func (c *Cache) PutStat(ctx context.Context, path string, payload []byte) error {
	row := statRow{Path: path, Payload: payload, CachedAt: time.Now()}
	return c.db.WithContext(ctx).Save(&row).Error
}

// GetListing returns the cached payload for path's list() result, if
// present and not expired.
func (c *Cache) GetListing(ctx context.Context, path string) ([]byte, bool) {
	return c.get(ctx, "getListing", &listingRow{}, path)
}

// PutListing caches payload as path's list() result.
func (c *Cache) PutListing(ctx context.Context, path string, payload []byte) error {
	row := listingRow{Path: path, Payload: payload, CachedAt: time.Now()}
	return c.db.WithContext(ctx).Save(&row).Error
}

// row is the common shape of statRow/listingRow needed for lookup.
type row interface {
	getPayload() []byte
	getCachedAt() time.Time
}

func (r *statRow) getPayload() []byte       { return r.Payload }
func (r *statRow) getCachedAt() time.Time   { return r.CachedAt }
func (r *listingRow) getPayload() []byte    { return r.Payload }
func (r *listingRow) getCachedAt() time.Time { return r.CachedAt }

func (c *Cache) get(ctx context.Context, operation string, dest row, path string) ([]byte, bool) {
	start := time.Now()

	result := c.db.WithContext(ctx).Where("path = ?", path).First(dest)
	if result.Error != nil {
		if c.metrics != nil {
			c.metrics.ObserveLookup(operation, false, time.Since(start))
		}
		return nil, false
	}

	if time.Since(dest.getCachedAt()) > c.ttl {
		c.db.WithContext(ctx).Where("path = ?", path).Delete(dest)
		if c.metrics != nil {
			c.metrics.RecordExpiry()
			c.metrics.ObserveLookup(operation, false, time.Since(start))
		}
		logger.DebugCtx(ctx, "metacache entry expired", "operation", operation, "path", path)
		return nil, false
	}

	if c.metrics != nil {
		c.metrics.ObserveLookup(operation, true, time.Since(start))
	}
	return dest.getPayload(), true
}

// InvalidatePath removes any cached stat and listing entries for path.
// The composite client calls this after create, mkdir, and delete so the
// cache never serves stale results for paths it just mutated.
func (c *Cache) InvalidatePath(ctx context.Context, operation, path string) {
	c.db.WithContext(ctx).Where("path = ?", path).Delete(&statRow{})
	c.db.WithContext(ctx).Where("path = ?", path).Delete(&listingRow{})
	if c.metrics != nil {
		c.metrics.RecordInvalidation(operation)
	}
}

// EntryCount returns the total number of cached stat and listing entries,
// primarily for metrics gauges.
func (c *Cache) EntryCount(ctx context.Context) (int64, error) {
	var stats, listings int64
	if err := c.db.WithContext(ctx).Model(&statRow{}).Count(&stats).Error; err != nil {
		return 0, err
	}
	if err := c.db.WithContext(ctx).Model(&listingRow{}).Count(&listings).Error; err != nil {
		return 0, err
	}
	return stats + listings, nil
}
