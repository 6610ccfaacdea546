// Package observability lets a deployment watch the pipeline, the caches and
// the HTTP API without those packages depending on a metrics backend.
//
// The kinship and layout engines are pure and report nothing themselves.
// The pipeline runner and the server call the hooks registered here. All
// three hook sets default to no-ops; [LogHooks] is a ready implementation
// that writes each event to a charm logger.
//
// Register hooks once at startup:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//
// Emitters fetch the current set on every call:
//
//	observability.Pipeline().OnLayoutStart(ctx, branchID, personCount)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the pipeline runner. Branch and person
// ids are passed as int64 so this package stays free of the domain types.
type PipelineHooks interface {
	OnSnapshot(ctx context.Context, persons int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, branchID int64, persons int)
	OnLayoutComplete(ctx context.Context, branchID int64, nodes int, duration time.Duration, err error)
	OnRelationship(ctx context.Context, a, b int64, kind string, duration time.Duration)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups by key type: "layout", "relationship"
// or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives one OnRequest and one OnResponse per API call. route is
// the chi route pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSnapshot(context.Context, int, time.Duration, error)               {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int64, int)                           {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int64, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnRelationship(context.Context, int64, int64, string, time.Duration) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// hookSet is replaced as a whole on every Set call so readers never see a
// half-updated registry.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[hookSet]

func init() { Reset() }

func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks replaces the pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks replaces the cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks replaces the HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

func Pipeline() PipelineHooks { return current.Load().pipeline }
func Cache() CacheHooks       { return current.Load().cache }
func HTTP() HTTPHooks         { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&hookSet{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
