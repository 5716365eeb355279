package dfsclient

import (
	"bytes"
	"context"
	"encoding/gob"

	"github.com/marmos91/dfsclient/pkg/metacache"
)

// WithMetacache attaches an optional local stat/list cache. The client
// remains correct without one; a cache only shortcuts repeat coordinator
// round trips within its TTL.
func (c *Client) WithMetacache(cache *metacache.Cache) *Client {
	c.cache = cache
	return c
}

func encodeSummary(fs FileSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(fs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSummary(payload []byte) (FileSummary, error) {
	var fs FileSummary
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&fs); err != nil {
		return FileSummary{}, err
	}
	return fs, nil
}

func encodeListing(entries []FileSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeListing(payload []byte) ([]FileSummary, error) {
	var entries []FileSummary
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// cachedStat returns a cached FileSummary for path, if the cache is
// enabled and holds a fresh entry. Decode failures are treated as misses
// rather than surfaced errors: the cache is an optimization, never a
// source of truth.
func (c *Client) cachedStat(ctx context.Context, path string) (FileSummary, bool) {
	if c.cache == nil {
		return FileSummary{}, false
	}
	payload, ok := c.cache.GetStat(ctx, path)
	if !ok {
		return FileSummary{}, false
	}
	fs, err := decodeSummary(payload)
	if err != nil {
		return FileSummary{}, false
	}
	return fs, true
}

func (c *Client) cacheStat(ctx context.Context, fs FileSummary) {
	if c.cache == nil {
		return
	}
	payload, err := encodeSummary(fs)
	if err != nil {
		return
	}
	_ = c.cache.PutStat(ctx, fs.Path, payload)
}

func (c *Client) cachedListing(ctx context.Context, path string) ([]FileSummary, bool) {
	if c.cache == nil {
		return nil, false
	}
	payload, ok := c.cache.GetListing(ctx, path)
	if !ok {
		return nil, false
	}
	entries, err := decodeListing(payload)
	if err != nil {
		return nil, false
	}
	return entries, true
}

func (c *Client) cacheListing(ctx context.Context, path string, entries []FileSummary) {
	if c.cache == nil {
		return
	}
	payload, err := encodeListing(entries)
	if err != nil {
		return
	}
	_ = c.cache.PutListing(ctx, path, payload)
}

// invalidateCache drops any cached stat/listing entries for path after a
// mutation (create, mkdir, delete) so the cache never serves results the
// mutation has just made stale. The parent directory's listing is also
// invalidated since the mutation changed its children.
func (c *Client) invalidateCache(ctx context.Context, operation, path string) {
	if c.cache == nil {
		return
	}
	c.cache.InvalidatePath(ctx, operation, path)
	if parent := DirName(path); parent != "" {
		c.cache.InvalidatePath(ctx, operation, parent)
	}
}
