// Package aicache stores AI analysis results keyed by a content hash.
//
// Results live in two tiers: a volatile store (Redis) for latency and a
// relational table as the source of truth across restarts. The tiers are
// never required to agree; a stale or absent volatile entry only costs a
// durable read or one extra provider call. Every cache failure is absorbed
// here so callers can treat caching as a pure optimization.
package aicache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVolatileMiss reports a clean miss from the volatile tier.
var ErrVolatileMiss = errors.New("volatile cache miss")

// Volatile is the fast TTL store. Implementations may be unavailable at any
// time; any error other than ErrVolatileMiss is treated as a miss by Cache.
type Volatile interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type Cache struct {
	DB       *gorm.DB
	Volatile Volatile // nil disables the volatile tier

	// TTL is used when repopulating the volatile tier on a durable hit.
	TTL time.Duration

	// Now is overridable for expiry tests. Nil means time.Now.
	Now func() time.Time
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Get returns the cached result for (key, kind), or ok=false on a miss.
// Volatile errors and durable read errors both degrade to a miss.
func (c *Cache) Get(ctx context.Context, key, kind string) (json.RawMessage, bool) {
	if c.Volatile != nil {
		v, err := c.Volatile.Get(ctx, key)
		if err == nil {
			return json.RawMessage(v), true
		}
		if !errors.Is(err, ErrVolatileMiss) {
			log.Printf("aicache: volatile get failed key=%s: %v\n", key, err)
		}
	}

	var row Entry
	err := c.DB.WithContext(ctx).
		Where("key = ? AND kind = ? AND expires_at > ?", key, kind, c.now()).
		First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("aicache: durable get failed key=%s: %v\n", key, err)
		}
		return nil, false
	}

	if c.Volatile != nil {
		if err := c.Volatile.Set(ctx, key, string(row.Result), c.TTL); err != nil {
			log.Printf("aicache: volatile repopulate failed key=%s: %v\n", key, err)
		}
	}

	return row.Result, true
}

// Put writes the result to both tiers. Failures in either tier are logged
// and swallowed; the freshly computed result stays usable by the caller.
func (c *Cache) Put(ctx context.Context, key, kind string, result json.RawMessage, ttl time.Duration) {
	if c.Volatile != nil {
		if err := c.Volatile.Set(ctx, key, string(result), ttl); err != nil {
			log.Printf("aicache: volatile put failed key=%s: %v\n", key, err)
		}
	}

	now := c.now()
	row := Entry{
		Key:       key,
		Kind:      kind,
		Result:    result,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "result", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		log.Printf("aicache: durable put failed key=%s: %v\n", key, err)
	}
}

// Sweep deletes expired durable rows and returns how many were removed.
// A missing table (first run before migration) is a no-op.
func (c *Cache) Sweep(ctx context.Context) (int64, error) {
	if !c.DB.Migrator().HasTable(&Entry{}) {
		return 0, nil
	}
	res := c.DB.WithContext(ctx).Where("expires_at <= ?", c.now()).Delete(&Entry{})
	return res.RowsAffected, res.Error
}
