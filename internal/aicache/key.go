package aicache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Analysis kinds. A cache key is scoped to one kind so the same content
// can hold independent sentiment, tag and summary results.
const (
	KindSentiment = "sentiment"
	KindTags      = "tags"
	KindSummary   = "summary"
)

// Key derives the cache key for a (content, kind) pair:
// hex(sha256(kind + ":" + content)).
//
// Content is hashed byte-for-byte, no case or whitespace normalization.
// An edit that only touches whitespace is a cache miss on purpose.
func Key(kind, content string) string {
	sum := sha256.Sum256([]byte(kind + ":" + content))
	return hex.EncodeToString(sum[:])
}
