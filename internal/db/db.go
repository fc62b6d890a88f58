package db

import (
	"fmt"

	"vent/internal/aicache"
	"vent/internal/auth"
	"vent/internal/entry"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&entry.Entry{},
		&aicache.Entry{},
	); err != nil {
		return err
	}

	// Tag filter (GIN for text[])
	if err := gdb.Exec(`create index if not exists idx_entries_tags on entries using gin (tags);`).Error; err != nil {
		return err
	}

	// Full-text search on entry content
	if err := gdb.Exec(`create index if not exists idx_entries_fts on entries using gin (to_tsvector('simple', content));`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_entries_user_updated on entries(user_id, updated_at desc);`,
		`create index if not exists idx_ai_cache_expires on ai_cache_entries(expires_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
