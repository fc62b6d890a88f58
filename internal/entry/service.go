package entry

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"vent/internal/ai"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Title   string
	Content string
}

type UpdateInput struct {
	Title   *string
	Content *string
}

type ListInput struct {
	Q     string // case-insensitive content search
	Tag   string // exact tag filter
	Limit int
}

// AnalysisUpdate carries the enrichment fields that succeeded for one pass.
// Nil fields are left untouched on the entry.
type AnalysisUpdate struct {
	Sentiment *ai.Sentiment
	Tags      []string
	Summary   *string
}

func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (uint64, error) {
	e := Entry{
		UserID:   userID,
		Title:    in.Title,
		Content:  in.Content,
		Emotions: pq.StringArray{},
		Tags:     pq.StringArray{},
	}
	if err := s.DB.WithContext(ctx).Create(&e).Error; err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (s *Service) Get(ctx context.Context, userID, id uint64) (Entry, error) {
	var e Entry
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, userID uint64, in ListInput) ([]Entry, error) {
	limit := in.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := s.DB.WithContext(ctx).Model(&Entry{}).Where("user_id = ?", userID)

	if in.Tag != "" {
		q = q.Where("? = any(tags)", in.Tag)
	}
	if in.Q != "" {
		q = q.Where("content ILIKE ?", "%"+in.Q+"%")
	}

	var rows []Entry
	if err := q.Order("updated_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update changes the entry's own fields. AI fields are untouched here; the
// caller re-enriches after a content change and stale results stay visible
// until that pass lands.
func (s *Service) Update(ctx context.Context, userID, id uint64, in UpdateInput) error {
	cols := map[string]any{"updated_at": time.Now()}
	if in.Title != nil {
		cols["title"] = *in.Title
	}
	if in.Content != nil {
		cols["content"] = *in.Content
	}

	res := s.DB.WithContext(ctx).Model(&Entry{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, userID, id uint64) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyAnalysis persists the successful fields of one enrichment pass in a
// single update. It does not bump updated_at: list ordering follows content
// edits, not background enrichment. A missing entry (deleted while the pass
// ran) is reported as ErrNotFound.
func (s *Service) ApplyAnalysis(ctx context.Context, entryID uint64, up AnalysisUpdate) error {
	cols := analysisColumns(up)
	if len(cols) == 0 {
		return nil
	}

	res := s.DB.WithContext(ctx).Model(&Entry{}).
		Where("id = ?", entryID).
		UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func analysisColumns(up AnalysisUpdate) map[string]any {
	cols := map[string]any{}
	if up.Sentiment != nil {
		cols["sentiment_score"] = up.Sentiment.Score
		cols["sentiment_label"] = up.Sentiment.Label
		cols["sentiment_confidence"] = up.Sentiment.Confidence
		cols["emotions"] = pq.StringArray(up.Sentiment.Emotions)
	}
	if up.Tags != nil {
		cols["tags"] = pq.StringArray(up.Tags)
	}
	if up.Summary != nil {
		cols["summary"] = *up.Summary
	}
	return cols
}
