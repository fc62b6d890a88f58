// Package ai computes sentiment, tags and summaries for diary entries.
//
// The Analyzer is cache-or-compute: every call derives a key from the entry
// content, consults the result cache, and only then asks the provider. With
// no provider configured every method returns a documented neutral default
// so the rest of the application works without the AI dependency.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vent/internal/aicache"
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelMixed    = "mixed"
)

const maxEmotions = 5
const maxTags = 8

// Sentiment is the analysis result for one entry's content.
type Sentiment struct {
	Score      float64  `json:"score"`      // -1..1
	Label      string   `json:"label"`      // positive/negative/neutral/mixed
	Confidence float64  `json:"confidence"` // 0..1
	Emotions   []string `json:"emotions"`   // at most 5
}

// ResultCache is the slice of the two-tier cache the analyzer needs.
type ResultCache interface {
	Get(ctx context.Context, key, kind string) (json.RawMessage, bool)
	Put(ctx context.Context, key, kind string, result json.RawMessage, ttl time.Duration)
}

type Analyzer struct {
	Provider Provider // nil means unconfigured: defaults, no errors
	Cache    ResultCache
	TTL      time.Duration
}

const sentimentPrompt = `You analyze the emotional tone of private diary entries. Return ONLY a JSON object with this structure:
{"score": 0.0, "label": "neutral", "confidence": 0.0, "emotions": []}

Rules:
- "score" is -1.0 (very negative) to 1.0 (very positive)
- "label" is one of: positive, negative, neutral, mixed
- "confidence" is 0.0 to 1.0
- "emotions" is up to 5 lowercase emotion words
Return ONLY the JSON, no other text.`

const tagsPrompt = `You extract topic tags from private diary entries. Return ONLY a JSON array of 3 to 8 lowercase tag strings, e.g. ["work","travel"].

Rules:
- Use short, lowercase, reusable tags
- No punctuation inside tags other than hyphens
Return ONLY the JSON array, no other text.`

const summaryPrompt = `You summarize private diary entries. Reply with a single short paragraph (at most two sentences) capturing what happened and how the writer felt. Reply with the summary text only.`

// AnalyzeSentiment returns the sentiment for content, cached by content hash.
func (a *Analyzer) AnalyzeSentiment(ctx context.Context, content string) (Sentiment, error) {
	if a.Provider == nil {
		return Sentiment{Label: LabelNeutral, Emotions: []string{}}, nil
	}

	key := aicache.Key(aicache.KindSentiment, content)
	if raw, ok := a.Cache.Get(ctx, key, aicache.KindSentiment); ok {
		var s Sentiment
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
		// corrupt cache value: recompute
	}

	text, err := a.Provider.Complete(ctx, sentimentPrompt, content, 0, 256)
	if err != nil {
		return Sentiment{}, fmt.Errorf("sentiment: %w", err)
	}

	var s Sentiment
	if err := json.Unmarshal([]byte(stripFences(text)), &s); err != nil {
		return Sentiment{}, fmt.Errorf("sentiment: parse response: %w", err)
	}
	s = normalizeSentiment(s)

	a.cachePut(ctx, key, aicache.KindSentiment, s)
	return s, nil
}

// GenerateTags returns 3-8 topic tags for content, cached by content hash.
func (a *Analyzer) GenerateTags(ctx context.Context, content string) ([]string, error) {
	if a.Provider == nil {
		return []string{}, nil
	}

	key := aicache.Key(aicache.KindTags, content)
	if raw, ok := a.Cache.Get(ctx, key, aicache.KindTags); ok {
		var tags []string
		if err := json.Unmarshal(raw, &tags); err == nil {
			return tags, nil
		}
	}

	text, err := a.Provider.Complete(ctx, tagsPrompt, content, 0.3, 128)
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(stripFences(text)), &tags); err != nil {
		return nil, fmt.Errorf("tags: parse response: %w", err)
	}
	tags = normalizeTags(tags)

	a.cachePut(ctx, key, aicache.KindTags, tags)
	return tags, nil
}

// Summarize returns a short summary of content, cached by content hash.
func (a *Analyzer) Summarize(ctx context.Context, content string) (string, error) {
	if a.Provider == nil {
		return "", nil
	}

	key := aicache.Key(aicache.KindSummary, content)
	if raw, ok := a.Cache.Get(ctx, key, aicache.KindSummary); ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
	}

	text, err := a.Provider.Complete(ctx, summaryPrompt, content, 0.5, 300)
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	summary := strings.TrimSpace(text)

	a.cachePut(ctx, key, aicache.KindSummary, summary)
	return summary, nil
}

func (a *Analyzer) cachePut(ctx context.Context, key, kind string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	a.Cache.Put(ctx, key, kind, raw, a.TTL)
}

func normalizeSentiment(s Sentiment) Sentiment {
	s.Score = clamp(s.Score, -1, 1)
	s.Confidence = clamp(s.Confidence, 0, 1)

	switch s.Label {
	case LabelPositive, LabelNegative, LabelNeutral, LabelMixed:
	default:
		s.Label = LabelNeutral
	}

	emotions := make([]string, 0, maxEmotions)
	for _, e := range s.Emotions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		emotions = append(emotions, e)
		if len(emotions) == maxEmotions {
			break
		}
	}
	s.Emotions = emotions

	return s
}

func normalizeTags(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))

	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)

		if len(out) == maxTags {
			break
		}
	}

	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stripFences removes a markdown code block wrapper, which models sometimes
// add around JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
