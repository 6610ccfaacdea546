// Package pipeline connects record stores, the kinship and layout engines,
// renderers and caches.
//
// The engines in kinship and treelayout are pure functions of their input.
// This package supplies that input and keeps the results: a [Runner] takes a
// snapshot from a [store.Store], hashes it, selects the records of one
// branch, runs the engine and caches the outcome under keys derived from the
// snapshot hash. The CLI and the HTTP server both go through a Runner so they
// behave the same.
//
// # Stages
//
//  1. Snapshot: read the dataset and compute its SHA-256
//  2. Select: pick the persons of a branch plus their spouses ([SelectBranch])
//  3. Layout or Relationship: run treelayout or kinship
//  4. Render: produce json, dot, svg, pdf or png from a layout
//
// # Usage
//
//	runner := pipeline.NewRunner(st, c, nil, logger)
//	lr, err := runner.Layout(ctx, pipeline.LayoutOptions{BranchID: 1})
//	if err != nil {
//	    return err
//	}
//	artifacts, err := runner.Render(ctx, lr, pipeline.RenderOptions{Formats: []string{"svg"}})
package pipeline

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/treelayout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTTL is how long cached results live when the runner has no TTL.
	DefaultTTL = 24 * time.Hour

	// DefaultPNGScale is the raster scale for png output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatPNG:  true,
}

// ContentTypes maps each format onto its MIME type.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
	FormatSVG:  "image/svg+xml",
	FormatPDF:  "application/pdf",
	FormatPNG:  "image/png",
}

// =============================================================================
// Options
// =============================================================================

// LayoutOptions selects the branch and geometry of a layout.
type LayoutOptions struct {
	BranchID family.ID
	// Geometry overrides the runner's geometry when non-zero.
	Geometry *treelayout.Options
	// Refresh skips the cache lookup but still stores the result.
	Refresh bool
}

// RenderOptions selects output formats.
type RenderOptions struct {
	Formats  []string
	Detailed bool
	PNGScale float64
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, formatList())
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatList() string {
	return strings.Join([]string{FormatJSON, FormatDOT, FormatSVG, FormatPDF, FormatPNG}, ", ")
}

func (o *RenderOptions) setDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
