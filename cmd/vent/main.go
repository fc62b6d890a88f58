package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vent/internal/ai"
	"vent/internal/aicache"
	"vent/internal/auth"
	"vent/internal/config"
	"vent/internal/db"
	"vent/internal/enrich"
	"vent/internal/entry"
	httpx "vent/internal/http"
)

func main() {
	cfg, _ := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)

	cache := &aicache.Cache{DB: gdb, TTL: cfg.AICacheTTL}

	var redisStore *aicache.RedisStore
	if cfg.RedisAddr != "" {
		redisStore = aicache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		cache.Volatile = redisStore
	} else {
		log.Println("REDIS_ADDR not set, running without the volatile cache tier")
	}

	var provider ai.Provider
	if cfg.AnthropicAPIKey != "" {
		provider = ai.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	} else {
		log.Println("ANTHROPIC_API_KEY not set, analysis returns neutral defaults")
	}
	analyzer := &ai.Analyzer{Provider: provider, Cache: cache, TTL: cfg.AICacheTTL}

	entries := &entry.Service{DB: gdb}
	enricher := &enrich.Enricher{Analyzer: analyzer, Entries: entries}

	r := httpx.NewRouter(cfg, gdb, jwtSvc, entries, enricher)

	ctx, cancel := context.WithCancel(context.Background())

	// expired-row sweep: once at start, then hourly
	sweeper := &aicache.Sweeper{Cache: cache, Interval: time.Hour}
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	// let in-flight enrichment passes finish, bounded by the same deadline
	done := make(chan struct{})
	go func() {
		enricher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Println("shutdown: abandoning in-flight enrichment")
	}

	if redisStore != nil {
		_ = redisStore.Close()
	}
}
