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

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache should miss")
	}

	if err := c.Set(ctx, "sky:1", []byte(`{"stars":[]}`), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "sky:1")
	if err != nil || !hit || string(data) != `{"stars":[]}` {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "sky:1"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "sky:1"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "sky:1"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without TTL should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear() = %d, %v; want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cleared entry should miss")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	type doc struct{ Seed uint64 }
	if err := SetJSON(ctx, c, "doc", doc{Seed: 7}, time.Hour); err != nil {
		t.Fatal(err)
	}
	var got doc
	if hit, err := GetJSON(ctx, c, "doc", &got); !hit || err != nil || got.Seed != 7 {
		t.Errorf("GetJSON = %v, %v, %+v", hit, err, got)
	}

	if err := c.Set(ctx, "raw", []byte("not json"), 0); err != nil {
		t.Fatal(err)
	}
	if hit, err := GetJSON(ctx, c, "raw", &got); hit || err != nil {
		t.Errorf("undecodable entry should miss: %v, %v", hit, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	a, err := HashJSON(map[string]int{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := HashJSON(map[string]int{"x": 1}); a != b {
		t.Error("HashJSON should be deterministic")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	sk1 := k.SkyKey("cat", SkyKeyOpts{Width: 800, Height: 600, Seed: 1, Strategy: "noise"})
	sk2 := k.SkyKey("cat", SkyKeyOpts{Width: 800, Height: 600, Seed: 2, Strategy: "noise"})
	if sk1 == sk2 {
		t.Error("Different seeds should produce different sky keys")
	}
	if sk1 != k.SkyKey("cat", SkyKeyOpts{Width: 800, Height: 600, Seed: 1, Strategy: "noise"}) {
		t.Error("SkyKey should be deterministic")
	}
	if !strings.HasPrefix(sk1, "sky:") {
		t.Errorf("SkyKey = %s", sk1)
	}

	ak1 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 || !strings.HasPrefix(ak1, "artifact:svg:") {
		t.Errorf("ArtifactKey = %s, %s", ak1, ak2)
	}

	if k.CatalogKey("https://a") == k.CatalogKey("https://b") {
		t.Error("Different sources should produce different catalog keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "test:")
	for _, key := range []string{
		scoped.SkyKey("c", SkyKeyOpts{}),
		scoped.ArtifactKey("s", ArtifactKeyOpts{Format: "html"}),
		scoped.CatalogKey("file:x"),
	} {
		if !strings.HasPrefix(key, "test:") {
			t.Errorf("key %s is not scoped", key)
		}
	}

	if got := NewScopedKeyer(nil, "p:").CatalogKey("x"); got != "p:"+NewDefaultKeyer().CatalogKey("x") {
		t.Errorf("nil inner keyer: %s", got)
	}
}

func TestRedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache() error = %v, want ErrUnavailable", err)
	}
}
