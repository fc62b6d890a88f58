package http

import (
	"net/http"

	"vent/internal/auth"
	"vent/internal/config"
	"vent/internal/enrich"
	"vent/internal/entry"
	"vent/internal/http/handler"
	mw "vent/internal/http/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, entries *entry.Service, enricher *enrich.Enricher) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{DB: db}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	entryH := &handler.EntryHandler{Svc: entries, Enricher: enricher}
	entryRead := &handler.EntryReadHandler{Svc: entries, DB: db}

	r.Route("/entries", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/", entryH.Create)
		r.Get("/", entryRead.List)

		r.Get("/tags", entryRead.Tags)

		r.Get("/{id}", entryRead.Get)
		r.Put("/{id}", entryH.Update)
		r.Delete("/{id}", entryH.Delete)
	})

	return r
}
