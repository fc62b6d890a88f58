package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"vent/internal/auth"

	"gorm.io/gorm"
)

type MeHandler struct {
	DB *gorm.DB
}

type meResp struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Me returns the authenticated diary owner's account. A token whose user
// row no longer exists (account deleted) is treated as unauthorized.
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var u auth.User
	if err := h.DB.First(&u, uid).Error; err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(meResp{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}
