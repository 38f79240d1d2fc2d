package cache

import (
	"context"
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
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "drawing"); hit {
		t.Error("empty cache should miss")
	}

	want := []byte(`{"id":"x"}`)
	if err := c.Set(ctx, "drawing", want, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, hit, err := c.Get(ctx, "drawing")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(got) != string(want) {
		t.Errorf("Get = %q, want %q", got, want)
	}

	if err := c.Delete(ctx, "drawing"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "drawing"); hit {
		t.Error("expected miss after Delete")
	}
	if err := c.Delete(ctx, "drawing"); err != nil {
		t.Errorf("Delete of absent key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "fleeting", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "fleeting"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should store forever")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "bad", []byte("x"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	hash := Hash([]byte("bad"))
	path := filepath.Join(dir, hash[:2], hash[2:]+".json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit = %v, err = %v, want miss without error", hit, err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("corrupt entry should be removed")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("c1ccccc1"))
	h2 := Hash([]byte("c1ccccc1"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	h3 := Hash([]byte("C1CCCCC1"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	gk := k.GraphKey("c1ccccc1")
	if !strings.HasPrefix(gk, "graph:") {
		t.Errorf("GraphKey prefix unexpected: %s", gk)
	}
	if gk != k.GraphKey("  c1ccccc1\n") {
		t.Error("surrounding whitespace should not change the graph key")
	}
	if gk == k.GraphKey("C1CCCCC1") {
		t.Error("different sources should produce different graph keys")
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Options: `{"bond_length":15}`, Version: 1})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Options: `{"bond_length":20}`, Version: 1})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey prefix unexpected: %s", lk1)
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Theme: "default"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Theme: "default"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, "art:") {
		t.Errorf("ArtifactKey prefix unexpected: %s", ak1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "gallery:")

	gk := scoped.GraphKey("CCO")
	if !strings.HasPrefix(gk, "gallery:graph:") {
		t.Errorf("ScopedKeyer GraphKey should be prefixed: %s", gk)
	}
	lk := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(lk, "gallery:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", lk)
	}
	ak := scoped.ArtifactKey("h", ArtifactKeyOpts{})
	if !strings.HasPrefix(ak, "gallery:art:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", ak)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.GraphKey("CCO"); !strings.HasPrefix(got, "prefix:graph:") {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	calls = 0
	permanent := os.ErrPermission
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
