package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vent/internal/auth"
	"vent/internal/entry"

	"gorm.io/gorm"
)

type EntryReadHandler struct {
	Svc *entry.Service
	DB  *gorm.DB
}

type sentimentDTO struct {
	Score      float64  `json:"score"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Emotions   []string `json:"emotions"`
}

type entryDTO struct {
	ID        uint64        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Sentiment *sentimentDTO `json:"sentiment"`
	Tags      []string      `json:"tags"`
	Summary   *string       `json:"summary"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func toEntryDTO(e entry.Entry) entryDTO {
	dto := entryDTO{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		Tags:      []string(e.Tags),
		Summary:   e.Summary,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.SentimentLabel != nil {
		s := sentimentDTO{
			Label:    *e.SentimentLabel,
			Emotions: []string(e.Emotions),
		}
		if e.SentimentScore != nil {
			s.Score = *e.SentimentScore
		}
		if e.SentimentConfidence != nil {
			s.Confidence = *e.SentimentConfidence
		}
		dto.Sentiment = &s
	}
	return dto
}

func (h *EntryReadHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	in := entry.ListInput{
		Q:   strings.TrimSpace(r.URL.Query().Get("q")),
		Tag: strings.TrimSpace(strings.ToLower(r.URL.Query().Get("tag"))),
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			in.Limit = n
		}
	}

	rows, err := h.Svc.List(r.Context(), uid, in)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]entryDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, toEntryDTO(e))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *EntryReadHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := entryID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.Svc.Get(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toEntryDTO(e))
}

// escapeLike neutralizes LIKE wildcards in user input so the tag filter
// stays a literal prefix match.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type tagDTO struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

func (h *EntryReadHandler) Tags(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	qText := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("q")))

	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	prefix := escapeLike(qText)

	var out []tagDTO
	if err := h.DB.Raw(`
		select tag, count(*) as count
		from (
			select unnest(tags) as tag
			from entries
			where user_id = ?
		) t
		where (? = '' or tag like ? || '%' escape '\')
		group by tag
		order by count desc, tag asc
		limit ?
	`, uid, prefix, prefix, limit).Scan(&out).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
