package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnParseStart(ctx, "CCO")
	p.OnParseComplete(ctx, "CCO", 3, time.Second, nil)
	p.OnPerceiveStart(ctx, 3)
	p.OnPerceiveComplete(ctx, 0, time.Second, nil)
	p.OnLayoutStart(ctx, 3)
	p.OnLayoutComplete(ctx, 0, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnSave(ctx, "abc123", time.Second, nil)
	s.OnGet(ctx, "abc123", true, time.Second, nil)
	s.OnList(ctx, 10, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	ctx := context.Background()

	ph := &testPipelineHooks{}
	SetPipelineHooks(ph)
	Pipeline().OnParseStart(ctx, "c1ccccc1")
	Pipeline().OnParseComplete(ctx, "c1ccccc1", 6, time.Millisecond, nil)
	if ph.parseStarts != 1 || ph.parseCompletes != 1 {
		t.Errorf("pipeline events = %d/%d, want 1/1", ph.parseStarts, ph.parseCompletes)
	}

	ch := &testCacheHooks{}
	SetCacheHooks(ch)
	Cache().OnCacheHit(ctx, "graph")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 512)
	if ch.hits != 1 || ch.misses != 1 || ch.sets != 1 {
		t.Errorf("cache events = %d/%d/%d, want 1/1/1", ch.hits, ch.misses, ch.sets)
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct {
	NoopPipelineHooks
	parseStarts    int
	parseCompletes int
}

func (h *testPipelineHooks) OnParseStart(ctx context.Context, source string) {
	h.parseStarts++
}

func (h *testPipelineHooks) OnParseComplete(ctx context.Context, source string, atomCount int, duration time.Duration, err error) {
	h.parseCompletes++
}

type testCacheHooks struct {
	NoopCacheHooks
	hits   int
	misses int
	sets   int
}

func (h *testCacheHooks) OnCacheHit(ctx context.Context, keyType string)           { h.hits++ }
func (h *testCacheHooks) OnCacheMiss(ctx context.Context, keyType string)          { h.misses++ }
func (h *testCacheHooks) OnCacheSet(ctx context.Context, keyType string, size int) { h.sets++ }

type testStoreHooks struct{ NoopStoreHooks }
