package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "layout:a", []byte(`{"nodes":[]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(data) != `{"nodes":[]}` {
		t.Errorf("Get = %s", data)
	}

	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpired(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestFileCacheBadEntries(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"corrupt", "not json"},
		{"foreign key", `{"key":"other","data":"eA=="}`},
		{"expired", `{"key":"k","data":"eA==","expires_at":"2001-01-01T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, _ := NewFileCache(t.TempDir())
			c := fc.(*FileCache)
			path := c.path("k")
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(tt.raw), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, hit, err := c.Get(context.Background(), "k"); hit || err != nil {
				t.Errorf("hit=%v err=%v, want miss", hit, err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("bad entry should be removed")
			}
		})
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "silsilah")
	fc, _ := NewFileCache(dir)
	c := fc.(*FileCache)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if c.Dir() != dir {
		t.Errorf("Dir = %q, want %q", c.Dir(), dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir should survive Clear: %v", err)
	}
}

func TestLRUCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatalf("NewLRUCache: %v", err)
	}
	defer c.Close()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_, _, _ = c.Get(ctx, "a") // a becomes most recent
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("least recently used entry should be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, hit, _ := c.Get(ctx, k); !hit {
			t.Errorf("entry %q should be present", k)
		}
	}
	if n := c.(*LRUCache).Len(); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
}

func TestLRUCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, _ := NewLRUCache(0)
	lc := c.(*LRUCache)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lc.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if lc.Len() != 0 {
		t.Error("expired entry should be removed on Get")
	}
}

func TestLRUCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c, _ := NewLRUCache(4)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("cached data aliased caller buffer: %s", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{}, "*cache.NullCache"},
		{Config{Backend: BackendNone}, "*cache.NullCache"},
		{Config{Backend: BackendFile, Dir: t.TempDir()}, "*cache.FileCache"},
		{Config{Backend: BackendLRU, Size: 8}, "*cache.LRUCache"},
	}
	for _, tt := range tests {
		c, err := Open(ctx, tt.cfg)
		if err != nil {
			t.Errorf("Open(%+v): %v", tt.cfg, err)
			continue
		}
		if got := typeName(c); got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.cfg.Backend, got, tt.want)
		}
	}

	if _, err := Open(ctx, Config{Backend: "memcached"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend error = %v", err)
	}
	if _, err := Open(ctx, Config{Backend: BackendRedis, URL: "not-a-url"}); err == nil {
		t.Error("invalid redis url should fail")
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *NullCache:
		return "*cache.NullCache"
	case *FileCache:
		return "*cache.FileCache"
	case *LRUCache:
		return "*cache.LRUCache"
	case *RedisCache:
		return "*cache.RedisCache"
	}
	return "unknown"
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("snap", LayoutKeyOpts{BranchID: 1})
	lk2 := k.LayoutKey("snap", LayoutKeyOpts{BranchID: 2})
	lk3 := k.LayoutKey("snap", LayoutKeyOpts{BranchID: 1, Geometry: map[string]float64{"node_width": 200}})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("snap", LayoutKeyOpts{BranchID: 1}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey prefix: %s", lk1)
	}

	if got := k.RelationshipKey("snap", 3, 7); got != "relationship:snap:3:7" {
		t.Errorf("RelationshipKey = %s", got)
	}
	if k.RelationshipKey("snap", 3, 7) == k.RelationshipKey("snap", 7, 3) {
		t.Error("RelationshipKey should keep direction")
	}

	ak1 := k.ArtifactKey("lh", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("lh", ArtifactKeyOpts{Format: "png"})
	ak3 := k.ArtifactKey("lh", ArtifactKeyOpts{Format: "svg", Detailed: true})
	if ak1 == ak2 || ak1 == ak3 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "bani:")

	if got := scoped.RelationshipKey("s", 1, 2); got != "bani:relationship:s:1:2" {
		t.Errorf("ScopedKeyer RelationshipKey = %s", got)
	}
	for _, key := range []string{
		scoped.LayoutKey("s", LayoutKeyOpts{BranchID: 1}),
		scoped.ArtifactKey("l", ArtifactKeyOpts{Format: "svg"}),
	} {
		if !strings.HasPrefix(key, "bani:") {
			t.Errorf("key should be prefixed: %s", key)
		}
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.RelationshipKey("s", 1, 2); key != "prefix:relationship:s:1:2" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should match with errors.Is")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retryWithBackoff(ctx, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = retryWithBackoff(ctx, time.Millisecond, func() error {
		calls++
		return ErrUnknownBackend
	})
	if err != ErrUnknownBackend || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = retryWithBackoff(ctx, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = retryWithBackoff(ctx, time.Millisecond, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
