package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopHTTPHooks
	layouts, hits, responses int
}

func (h *countingHooks) OnLayoutComplete(context.Context, int64, int, time.Duration, error) {
	h.layouts++
}
func (h *countingHooks) OnCacheHit(context.Context, string) { h.hits++ }
func (h *countingHooks) OnResponse(context.Context, string, string, int, time.Duration) {
	h.responses++
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	Pipeline().OnSnapshot(ctx, 120, time.Millisecond, nil)
	Pipeline().OnLayoutComplete(ctx, 1, 140, time.Second, errors.New("boom"))
	Pipeline().OnRelationship(ctx, 3, 7, "cousin", time.Microsecond)
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnResponse(ctx, "GET", "/api/relationship", 200, time.Second)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestSetHooksRoutesEvents(t *testing.T) {
	defer Reset()
	ctx := context.Background()
	h := &countingHooks{}

	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetPipelineHooks(nil)

	Pipeline().OnLayoutComplete(ctx, 1, 10, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheHit(ctx, "relationship")
	HTTP().OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	if h.layouts != 1 || h.hits != 2 || h.responses != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/2/1", h.layouts, h.hits, h.responses)
	}

	Reset()
	Cache().OnCacheHit(ctx, "layout")
	if h.hits != 2 {
		t.Error("Reset should detach custom hooks")
	}
}

func TestSetHooksConcurrent(t *testing.T) {
	defer Reset()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() { defer wg.Done(); SetCacheHooks(&countingHooks{}) }()
		go func() { defer wg.Done(); _ = Pipeline() }()
	}
	wg.Wait()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("setting cache hooks must not touch pipeline hooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnLayoutComplete(ctx, 7, 12, time.Millisecond, nil)
	h.OnCacheHit(ctx, "layout")
	h.OnRenderComplete(ctx, []string{"svg", "png"}, time.Second, errors.New("rsvg-convert missing"))
	h.OnResponse(ctx, "GET", "/api/relationship", 503, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"layout done", "branch=7", "nodes=12",
		"cache hit", "type=layout",
		"WARN", "render done", "svg,png", "rsvg-convert missing",
		"status=503",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.New(&buf))

	h.OnCacheMiss(context.Background(), "artifact")
	h.OnResponse(context.Background(), "GET", "/healthz", 200, time.Millisecond)

	if buf.Len() != 0 {
		t.Errorf("debug events should be dropped at info level, got %q", buf.String())
	}
}
