package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/juruladenbam/bam-sub000/pkg/cache"
	"github.com/juruladenbam/bam-sub000/pkg/observability"
	"github.com/juruladenbam/bam-sub000/pkg/render/nodelink"
	"github.com/juruladenbam/bam-sub000/pkg/treelayout"
)

// Render generates artifacts for lr in the requested formats, reusing
// cached artifacts of the same layout hash.
func (r *Runner) Render(ctx context.Context, lr *LayoutResult, opts RenderOptions) (map[string][]byte, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(lr.Hash, cache.ArtifactKeyOpts{Format: format, Detailed: opts.Detailed})
		if data, ok := r.cacheGet(ctx, "artifact", key); ok {
			artifacts[format] = data
			continue
		}
		data, err := RenderLayout(ctx, lr.Layout, format, opts)
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, err
		}
		r.cacheSet(ctx, "artifact", key, data)
		artifacts[format] = data
	}

	elapsed := time.Since(start)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, elapsed, nil)
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", elapsed)
	return artifacts, nil
}

// RenderLayout renders res in one format without caching.
func RenderLayout(ctx context.Context, res *treelayout.Result, format string, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return res.Encode()
	}

	dot := nodelink.ToDOT(res, nodelink.Options{Detailed: opts.Detailed})
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG:
		data, err = nodelink.RenderSVG(ctx, dot)
	case FormatPDF:
		data, err = nodelink.RenderPDF(ctx, dot)
	case FormatPNG:
		scale := opts.PNGScale
		if scale <= 0 {
			scale = DefaultPNGScale
		}
		data, err = nodelink.RenderPNG(ctx, dot, scale)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
