package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Engine hooks
	e := NoopEngineHooks{}
	e.OnValidateStart(ctx, 10, 4)
	e.OnValidateComplete(ctx, 10, 4, time.Second, nil)
	e.OnShuffleStart(ctx, 10, 42)
	e.OnShuffleComplete(ctx, 10, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "shuffle")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "shuffle", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/api/shuffle")
	h.OnResponse(ctx, "POST", "/api/shuffle", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	// Verify defaults are noop
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customEngine := &testEngineHooks{}
	SetEngineHooks(customEngine)
	if Engine() != customEngine {
		t.Error("SetEngineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEngineHooks{}
	SetEngineHooks(custom)
	SetEngineHooks(nil)
	if Engine() != custom {
		t.Error("SetEngineHooks(nil) should keep the previous hooks")
	}

	SetCacheHooks(nil)
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("SetCacheHooks(nil) should keep the noop default")
	}

	Reset()
}

func TestHooksRecordEvents(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testEngineHooks{}
	SetEngineHooks(custom)

	ctx := context.Background()
	Engine().OnShuffleStart(ctx, 5, 42)
	Engine().OnShuffleComplete(ctx, 5, time.Millisecond, nil)

	if custom.starts != 1 || custom.completes != 1 {
		t.Errorf("recorded %d starts, %d completes, want 1 each", custom.starts, custom.completes)
	}
}

// Test hook implementations.

type testEngineHooks struct {
	starts    int
	completes int
}

func (h *testEngineHooks) OnValidateStart(context.Context, int, int) {}
func (h *testEngineHooks) OnValidateComplete(context.Context, int, int, time.Duration, error) {
}
func (h *testEngineHooks) OnShuffleStart(context.Context, int, uint64) { h.starts++ }
func (h *testEngineHooks) OnShuffleComplete(context.Context, int, time.Duration, error) {
	h.completes++
}

type testCacheHooks struct{}

func (h *testCacheHooks) OnCacheHit(context.Context, string)      {}
func (h *testCacheHooks) OnCacheMiss(context.Context, string)     {}
func (h *testCacheHooks) OnCacheSet(context.Context, string, int) {}

type testHTTPHooks struct{}

func (h *testHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (h *testHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
