package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Sign(42)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	uid, err := j.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected user 42, got %d", uid)
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	j.ttl = -time.Minute // already expired at issue time

	token, err := j.Sign(42)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := j.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestJWTRejectsTampering(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Sign(42)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := j.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	other := NewJWT("different-secret", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)
	if _, err := j.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRequireAuth(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Sign(7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var gotUID uint64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
	})
	h := RequireAuth(j)(next)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid token", header: "Bearer " + token, status: http.StatusOK},
		{name: "case-insensitive scheme", header: "bearer " + token, status: http.StatusOK},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer  ", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUID = 0
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && gotUID != 7 {
				t.Fatalf("expected user 7 on the context, got %d", gotUID)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !ComparePassword(hash, "correct horse battery staple") {
		t.Fatal("expected matching password to compare true")
	}
	if ComparePassword(hash, "wrong password") {
		t.Fatal("expected wrong password to compare false")
	}
}
