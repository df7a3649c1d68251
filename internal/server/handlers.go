package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/peterhq/peter/internal/cache"
	"github.com/peterhq/peter/internal/executor"
	"github.com/peterhq/peter/internal/store"
	"github.com/peterhq/peter/pkg/compile"
	"github.com/peterhq/peter/pkg/plan"
	"github.com/peterhq/peter/pkg/schema"
)

// maxDocumentBytes bounds uploaded document size.
const maxDocumentBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateResponse is the JSON shape of a validation call.
type validateResponse struct {
	Valid  bool          `json:"valid"`
	Issues schema.Issues `json:"issues"`
}

// handleValidate validates a raw YAML document from the request body.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	_, issues, err := schema.Validate(raw)
	if err != nil {
		var perr *schema.ParseError
		if errors.As(err, &perr) {
			writeJSON(w, http.StatusUnprocessableEntity, validateResponse{
				Valid:  false,
				Issues: schema.Issues{{Path: "document", Message: perr.Error(), Severity: schema.SeverityError}},
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: !issues.HasErrors(), Issues: issues})
}

// compileResponse is the JSON shape of a compile call.
type compileResponse struct {
	Plan    *plan.Plan       `json:"plan"`
	Widgets []compile.Widget `json:"widgets"`
}

// handleCompile compiles a raw YAML document. With ?execute=1 and a
// configured runner the planned queries run first.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	doc, issues, err := schema.Validate(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{Valid: false, Issues: issues})
		return
	}

	execute := r.URL.Query().Get("execute") == "1"
	writeJSON(w, http.StatusOK, s.compileDoc(r, doc, execute))
}

func (s *Server) compileDoc(r *http.Request, doc *schema.Document, execute bool) compileResponse {
	p := plan.Build(doc)

	results := compile.ResultSet{}
	if execute && s.cfg.Runner != nil {
		c := s.cfg.Cache
		if c == nil {
			c = cache.NewNullCache()
		}
		results = executor.RunAll(r.Context(), s.cfg.Runner, p, executor.Options{
			Cache:  c,
			TTL:    s.cfg.TTL,
			Logger: s.logger,
		})
	}

	widgets := compile.Compile(doc, results, compile.Options{})
	return compileResponse{Plan: p, Widgets: widgets}
}

// handlePreview compiles the configured preview source: the watched
// file, or a stored slug via ?slug=.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc, err := s.previewDocument(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.compileDoc(r, doc, s.cfg.Runner != nil))
}

func (s *Server) previewDocument(r *http.Request) (*schema.Document, error) {
	if slug := r.URL.Query().Get("slug"); slug != "" && s.cfg.Store != nil {
		rev, err := s.cfg.Store.Latest(r.Context(), slug)
		if err != nil {
			return nil, err
		}
		return validateRaw(rev.Raw)
	}
	if s.cfg.File == "" {
		return nil, fmt.Errorf("no preview source configured")
	}
	raw, err := os.ReadFile(s.cfg.File)
	if err != nil {
		return nil, err
	}
	return validateRaw(raw)
}

func validateRaw(raw []byte) (*schema.Document, error) {
	doc, issues, err := schema.Validate(raw)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &schema.ValidationError{Issues: issues.Errors()}
	}
	return doc, nil
}

// handleListDashboards returns the latest revision of every dashboard.
func (s *Server) handleListDashboards(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusNotImplemented, "no revision store configured")
		return
	}
	revs, err := s.cfg.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, revs)
}

// handleGetDashboard returns the latest revision for a slug, document
// included.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.fetchLatest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revision": rev,
		"document": string(rev.Raw),
	})
}

// handlePutDashboard validates the uploaded document and saves it as a
// new revision. All or nothing: an invalid document stores nothing.
func (s *Server) handlePutDashboard(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusNotImplemented, "no revision store configured")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	doc, err := validateRaw(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if slug := chi.URLParam(r, "slug"); doc.Slug != slug {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("document slug %q does not match path slug %q", doc.Slug, slug))
		return
	}

	rev := &store.Revision{
		Slug:    doc.Slug,
		Version: doc.Version,
		Title:   doc.Title,
		Owner:   doc.Owner,
		Raw:     raw,
	}
	if err := s.cfg.Store.Save(r.Context(), rev); err != nil {
		var conflict *store.VersionConflictError
		if errors.As(err, &conflict) {
			writeError(w, http.StatusConflict, conflict.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

// handleDashboardHistory returns all revisions for a slug, newest
// first.
func (s *Server) handleDashboardHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusNotImplemented, "no revision store configured")
		return
	}
	revs, err := s.cfg.Store.History(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "dashboard not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, revs)
}

// handleDashboardPlan compiles the stored document into its execution
// plan.
func (s *Server) handleDashboardPlan(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.fetchLatest(w, r)
	if !ok {
		return
	}
	doc, err := validateRaw(rev.Raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plan.Build(doc))
}

func (s *Server) fetchLatest(w http.ResponseWriter, r *http.Request) (*store.Revision, bool) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusNotImplemented, "no revision store configured")
		return nil, false
	}
	rev, err := s.cfg.Store.Latest(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "dashboard not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rev, true
}
