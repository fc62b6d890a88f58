package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"vent/internal/auth"

	"gorm.io/gorm"
)

const minPasswordLen = 8

type AuthHandler struct {
	DB  *gorm.DB
	JWT *auth.JWT
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// authResp is returned by both register and login so the client can start
// writing entries without a follow-up /me call.
type authResp struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validEmail(req.Email) {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return
	}
	if len(req.Password) < minPasswordLen {
		http.Error(w, "password too short", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	u := auth.User{Email: req.Email, PasswordHash: hash}
	if err := h.DB.Create(&u).Error; err != nil {
		// unique index on email
		http.Error(w, "email already used", http.StatusConflict)
		return
	}

	h.respondAuthed(w, u, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	var u auth.User
	if err := h.DB.Where("email = ?", req.Email).First(&u).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.respondAuthed(w, u, http.StatusOK)
}

func (h *AuthHandler) respondAuthed(w http.ResponseWriter, u auth.User, status int) {
	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authResp{
		Token: token,
		User:  userDTO{ID: u.ID, Email: u.Email},
	})
}

// validEmail is a cheap shape check; the unique index is the real gate.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
