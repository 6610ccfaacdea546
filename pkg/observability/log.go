package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// charm logger. Failures are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)

func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

func (h *LogHooks) OnSnapshot(_ context.Context, persons int, d time.Duration, err error) {
	h.done("snapshot", err, "persons", persons, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, branchID int64, persons int) {
	h.logger.Debug("layout start", "branch", branchID, "persons", persons)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, branchID int64, nodes int, d time.Duration, err error) {
	h.done("layout done", err, "branch", branchID, "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnRelationship(_ context.Context, a, b int64, kind string, d time.Duration) {
	h.logger.Debug("relationship", "a", a, "b", b, "kind", kind, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render done", err, "formats", strings.Join(formats, ","), "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// OnRequest is a no-op; the server's request logger already records the
// request line.
func (h *LogHooks) OnRequest(context.Context, string, string) {}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	if status >= 500 {
		h.logger.Warn("response", "method", method, "route", route, "status", status, "duration", d)
		return
	}
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}
