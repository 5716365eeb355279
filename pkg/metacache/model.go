package metacache

import "time"

// statRow mirrors the stat_entries table: one cached stat() result per
// path, keyed by its full path.
type statRow struct {
	Path     string `gorm:"column:path;primaryKey"`
	Payload  []byte `gorm:"column:payload"`
	CachedAt time.Time `gorm:"column:cached_at"`
}

func (statRow) TableName() string { return "stat_entries" }

// listingRow mirrors the listing_entries table: one cached list() result
// per directory path.
type listingRow struct {
	Path     string `gorm:"column:path;primaryKey"`
	Payload  []byte `gorm:"column:payload"`
	CachedAt time.Time `gorm:"column:cached_at"`
}

func (listingRow) TableName() string { return "listing_entries" }
