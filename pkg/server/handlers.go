package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/juruladenbam/bam-sub000/pkg/buildinfo"
	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/pipeline"
)

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := s.runner.Branches(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if branches == nil {
		branches = []pipeline.BranchSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.serveTree(w, r, pipeline.FormatJSON)
}

func (s *Server) handleTreeArtifact(w http.ResponseWriter, r *http.Request) {
	s.serveTree(w, r, chi.URLParam(r, "format"))
}

func (s *Server) serveTree(w http.ResponseWriter, r *http.Request, format string) {
	branchID, err := errs.ParseID(chi.URLParam(r, "branchID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	lr, err := s.runner.Layout(r.Context(), pipeline.LayoutOptions{
		BranchID: family.ID(branchID),
		Refresh:  boolParam(q.Get("refresh")),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var data []byte
	if format == pipeline.FormatJSON {
		data, err = lr.Layout.Encode()
	} else {
		var artifacts map[string][]byte
		artifacts, err = s.runner.Render(r.Context(), lr, pipeline.RenderOptions{
			Formats:  []string{format},
			Detailed: boolParam(q.Get("detailed")),
		})
		data = artifacts[format]
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set(cacheHeader, cacheStatus(lr.CacheHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRelationship(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, err := errs.ParseID(q.Get("a"))
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidID, err, "parameter a: %s", errs.UserMessage(err)))
		return
	}
	b, err := errs.ParseID(q.Get("b"))
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidID, err, "parameter b: %s", errs.UserMessage(err)))
		return
	}

	rel, err := s.runner.Relationship(r.Context(), family.ID(a), family.ID(b))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(cacheHeader, cacheStatus(rel.CacheHit))
	writeJSON(w, http.StatusOK, rel)
}

// =============================================================================
// Responses
// =============================================================================

// APIErrorDetail is a single error in an error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse is the body of every error response.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) && errs.GetCode(err) == "" {
		err = errs.Wrap(errs.ErrCodeTimeout, err, "request timed out")
	}
	if errs.HTTPStatus(err) >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", middleware.GetReqID(r.Context()))
	}
	writeError(w, err)
}

func writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	detail := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
		detail = "internal error"
	}
	writeJSON(w, status, APIErrorResponse{
		Errors: []APIErrorDetail{{
			Code:   string(code),
			Status: strconv.Itoa(status),
			Detail: detail,
		}},
	})
}

func notFound(path string) error {
	return errs.New(errs.ErrCodeNotFound, "no route for %s", path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
