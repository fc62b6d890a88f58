package aicache

import (
	"encoding/json"
	"time"
)

// Entry is one cached analysis result in the durable tier. Key is unique:
// an upsert replaces any earlier result for the same (content, kind) pair.
type Entry struct {
	ID        uint64          `gorm:"primaryKey"`
	Key       string          `gorm:"uniqueIndex;size:64;not null"`
	Kind      string          `gorm:"index;not null"`
	Result    json.RawMessage `gorm:"type:jsonb;not null"`
	ExpiresAt time.Time       `gorm:"index;not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

func (Entry) TableName() string { return "ai_cache_entries" }
