package database

import (
	"context"
	"sync"
	"time"

	"facility-matcher/core/table"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// cachedTable is a loaded table with its load time.
type cachedTable struct {
	table table.Table
	built time.Time
}

// TableCache keeps recently loaded registry tables in memory.
// Concurrent loads of the same table share one query.
type TableCache struct {
	db     *gorm.DB
	ttl    time.Duration
	mu     sync.RWMutex
	tables map[string]cachedTable
	sf     singleflight.Group
	load   func(ctx context.Context, db *gorm.DB, name string) (table.Table, error)
}

// NewTableCache creates a cache over db. A zero ttl disables caching.
func NewTableCache(db *gorm.DB, ttl time.Duration) *TableCache {
	return &TableCache{
		db:     db,
		ttl:    ttl,
		tables: make(map[string]cachedTable),
		load:   LoadTable,
	}
}

func (c *TableCache) fresh(entry cachedTable) bool {
	return c.ttl > 0 && time.Since(entry.built) <= c.ttl
}

// Get returns the named table, loading it if absent or expired.
func (c *TableCache) Get(ctx context.Context, name string) (table.Table, error) {
	if err := ValidateTableName(name); err != nil {
		return table.Table{}, err
	}

	c.mu.RLock()
	entry, ok := c.tables[name]
	c.mu.RUnlock()
	if ok && c.fresh(entry) {
		return entry.table, nil
	}

	result, err, _ := c.sf.Do(name, func() (interface{}, error) {
		c.mu.RLock()
		entry, ok := c.tables[name]
		c.mu.RUnlock()
		if ok && c.fresh(entry) {
			return entry.table, nil
		}

		t, err := c.load(ctx, c.db, name)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			c.tables[name] = cachedTable{table: t, built: time.Now()}
			c.mu.Unlock()
		}
		return t, nil
	})
	if err != nil {
		return table.Table{}, err
	}

	return result.(table.Table), nil
}

// Invalidate drops a cached table.
func (c *TableCache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.tables, name)
	c.mu.Unlock()
}
