package entry

import (
	"time"

	"github.com/lib/pq"
)

// Entry is one diary entry. The AI-derived fields (sentiment, tags,
// summary) are independently nullable: each may be absent or stale
// relative to Content while enrichment is in flight or partially failed.
// The entry row is the durable home for its latest analysis results; the
// ai cache is a reconstructable derivative keyed by content hash.
type Entry struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Title   string `gorm:"type:text;not null;default:''"`
	Content string `gorm:"type:text;not null"`

	SentimentScore      *float64       `gorm:"type:double precision"`
	SentimentLabel      *string        `gorm:"type:text"`
	SentimentConfidence *float64       `gorm:"type:double precision"`
	Emotions            pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Tags                pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Summary             *string        `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"index;not null;default:now()"`
}
