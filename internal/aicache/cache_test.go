package aicache

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cache.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&Entry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

type fakeVolatile struct {
	data        map[string]string
	sets        int
	unavailable bool
}

func newFakeVolatile() *fakeVolatile {
	return &fakeVolatile{data: map[string]string{}}
}

func (f *fakeVolatile) Get(_ context.Context, key string) (string, error) {
	if f.unavailable {
		return "", errors.New("connection refused")
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrVolatileMiss
	}
	return v, nil
}

func (f *fakeVolatile) Set(_ context.Context, key, value string, _ time.Duration) error {
	if f.unavailable {
		return errors.New("connection refused")
	}
	f.data[key] = value
	f.sets++
	return nil
}

func TestGetColdCacheIsAbsent(t *testing.T) {
	c := &Cache{DB: testDB(t), TTL: time.Hour}

	if _, ok := c.Get(context.Background(), Key(KindTags, "anything"), KindTags); ok {
		t.Fatal("expected a miss on a cold cache")
	}
}

func TestPutThenGet(t *testing.T) {
	c := &Cache{DB: testDB(t), Volatile: newFakeVolatile(), TTL: time.Hour}

	key := Key(KindTags, "Had a great day at the park")
	c.Put(context.Background(), key, KindTags, json.RawMessage(`["park","happy"]`), time.Hour)

	raw, ok := c.Get(context.Background(), key, KindTags)
	if !ok {
		t.Fatal("expected a hit after put")
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		t.Fatalf("unmarshal cached result: %v", err)
	}
	if len(tags) != 2 || tags[0] != "park" || tags[1] != "happy" {
		t.Fatalf("expected [park happy], got %v", tags)
	}
}

func TestPutThenGetWithVolatileUnavailable(t *testing.T) {
	vol := newFakeVolatile()
	vol.unavailable = true
	c := &Cache{DB: testDB(t), Volatile: vol, TTL: time.Hour}

	key := Key(KindSummary, "some content")
	c.Put(context.Background(), key, KindSummary, json.RawMessage(`"a summary"`), time.Hour)

	raw, ok := c.Get(context.Background(), key, KindSummary)
	if !ok {
		t.Fatal("expected a durable hit despite the volatile tier being down")
	}
	if string(raw) != `"a summary"` {
		t.Fatalf("unexpected result %s", raw)
	}
}

func TestGetWrongKindIsAbsent(t *testing.T) {
	c := &Cache{DB: testDB(t), TTL: time.Hour}

	key := Key(KindTags, "content")
	c.Put(context.Background(), key, KindTags, json.RawMessage(`[]`), time.Hour)

	if _, ok := c.Get(context.Background(), key, KindSummary); ok {
		t.Fatal("expected a miss for a different kind")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	c := &Cache{DB: testDB(t), TTL: time.Hour, Now: func() time.Time { return now }}

	key := Key(KindTags, "Had a great day at the park")
	c.Put(context.Background(), key, KindTags, json.RawMessage(`["park","happy"]`), 3600*time.Second)

	if _, ok := c.Get(context.Background(), key, KindTags); !ok {
		t.Fatal("expected a hit before expiry")
	}

	// advance past the TTL
	now = now.Add(3601 * time.Second)

	if _, ok := c.Get(context.Background(), key, KindTags); ok {
		t.Fatal("expected a miss after expiry")
	}

	n, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected sweep to remove 1 row, removed %d", n)
	}

	var count int64
	if err := c.DB.Model(&Entry{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 durable rows after sweep, got %d", count)
	}
}

func TestSweepNothingExpired(t *testing.T) {
	c := &Cache{DB: testDB(t), TTL: time.Hour}

	c.Put(context.Background(), Key(KindTags, "fresh"), KindTags, json.RawMessage(`[]`), time.Hour)

	n, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected sweep to remove nothing, removed %d", n)
	}
}

func TestSweepMissingTable(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bare.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	c := &Cache{DB: gdb, TTL: time.Hour}

	n, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep on missing table should be a no-op, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 removed rows, got %d", n)
	}
}

func TestPutMissingTableIsSwallowed(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bare.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	vol := newFakeVolatile()
	c := &Cache{DB: gdb, Volatile: vol, TTL: time.Hour}

	// durable write fails (no table); it must be logged, not raised
	key := Key(KindTags, "content")
	c.Put(context.Background(), key, KindTags, json.RawMessage(`["a"]`), time.Hour)

	// the volatile tier was still written best-effort
	if vol.data[key] != `["a"]` {
		t.Fatalf("expected the volatile write to land, got %q", vol.data[key])
	}
}

func TestPutBothTiersFailingIsSwallowed(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bare.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	vol := newFakeVolatile()
	vol.unavailable = true
	c := &Cache{DB: gdb, Volatile: vol, TTL: time.Hour}

	key := Key(KindSummary, "content")
	c.Put(context.Background(), key, KindSummary, json.RawMessage(`"s"`), time.Hour)

	// nothing cached anywhere: the next get is a plain miss
	if _, ok := c.Get(context.Background(), key, KindSummary); ok {
		t.Fatal("expected a miss when both tiers are down")
	}
}

func TestPutUpsertsByKey(t *testing.T) {
	now := time.Now()
	c := &Cache{DB: testDB(t), TTL: time.Hour, Now: func() time.Time { return now }}

	key := Key(KindSummary, "content")
	c.Put(context.Background(), key, KindSummary, json.RawMessage(`"first"`), time.Hour)

	now = now.Add(2 * time.Hour) // first write is expired by now
	c.Put(context.Background(), key, KindSummary, json.RawMessage(`"second"`), time.Hour)

	var count int64
	if err := c.DB.Model(&Entry{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single live row per key, got %d", count)
	}

	raw, ok := c.Get(context.Background(), key, KindSummary)
	if !ok {
		t.Fatal("expected a hit after refresh")
	}
	if string(raw) != `"second"` {
		t.Fatalf("expected refreshed result, got %s", raw)
	}
}

func TestDurableHitRepopulatesVolatile(t *testing.T) {
	gdb := testDB(t)

	// seed the durable tier only
	seed := &Cache{DB: gdb, TTL: time.Hour}
	key := Key(KindTags, "content")
	seed.Put(context.Background(), key, KindTags, json.RawMessage(`["a"]`), time.Hour)

	vol := newFakeVolatile()
	c := &Cache{DB: gdb, Volatile: vol, TTL: time.Hour}

	if _, ok := c.Get(context.Background(), key, KindTags); !ok {
		t.Fatal("expected a durable hit")
	}
	if vol.sets != 1 {
		t.Fatalf("expected the durable hit to repopulate the volatile tier, sets=%d", vol.sets)
	}
	if vol.data[key] != `["a"]` {
		t.Fatalf("volatile tier holds %q", vol.data[key])
	}

	// second get is served from the volatile tier
	if _, ok := c.Get(context.Background(), key, KindTags); !ok {
		t.Fatal("expected a volatile hit")
	}
	if vol.sets != 1 {
		t.Fatalf("expected no extra repopulation on a volatile hit, sets=%d", vol.sets)
	}
}
