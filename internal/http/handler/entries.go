package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"vent/internal/auth"
	"vent/internal/enrich"
	"vent/internal/entry"

	"github.com/go-chi/chi/v5"
)

// EntryHandler covers the write side of /entries. Creates and content
// updates hand the entry to the enricher after the write commits; the
// response never waits for analysis.
type EntryHandler struct {
	Svc      *entry.Service
	Enricher *enrich.Enricher
}

type createEntryReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		http.Error(w, "content required", http.StatusBadRequest)
		return
	}

	id, err := h.Svc.Create(r.Context(), uid, entry.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Enricher.Submit(id, req.Content)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
}

type updateEntryReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := entryID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title == nil && req.Content == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}
	if req.Content != nil {
		c := strings.TrimSpace(*req.Content)
		if c == "" {
			http.Error(w, "content required", http.StatusBadRequest)
			return
		}
		req.Content = &c
	}

	err = h.Svc.Update(r.Context(), uid, id, entry.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	// Re-enrich only when the content changed; title edits keep the
	// existing analysis.
	if req.Content != nil {
		h.Enricher.Submit(id, *req.Content)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := entryID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Delete(r.Context(), uid, id); err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func entryID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}
