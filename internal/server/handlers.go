package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/storyshuffle/pkg/errors"
	"github.com/matzehuels/storyshuffle/pkg/manuscript"
	"github.com/matzehuels/storyshuffle/pkg/pipeline"
	"github.com/matzehuels/storyshuffle/pkg/session"
	"github.com/matzehuels/storyshuffle/pkg/shuffle"
)

// shuffleRequest is the body of POST /api/shuffle and /api/validate.
type shuffleRequest struct {
	Manuscript     string           `json:"manuscript"`
	Rules          manuscript.Rules `json:"rules"`
	Delimiter      string           `json:"delimiter,omitempty"`
	DelimiterRegex bool             `json:"delimiter_regex,omitempty"`
	Seed           uint64           `json:"seed,omitempty"`
	Refresh        bool             `json:"refresh,omitempty"`
}

func (req *shuffleRequest) options() pipeline.Options {
	return pipeline.Options{
		Manuscript:     req.Manuscript,
		Rules:          req.Rules,
		Delimiter:      req.Delimiter,
		DelimiterRegex: req.DelimiterRegex,
		Seed:           req.Seed,
		Refresh:        req.Refresh,
	}
}

// shuffleResponse is the body of a successful shuffle.
type shuffleResponse struct {
	Order       []string            `json:"order"`
	Permutation shuffle.Permutation `json:"permutation"`
	Output      string              `json:"output"`
	Sections    int                 `json:"sections"`
	Constraints int                 `json:"constraints"`
	Fixed       int                 `json:"fixed"`
	Seed        uint64              `json:"seed"`
	Cached      bool                `json:"cached"`
}

// validateResponse is the body of a successful validation.
type validateResponse struct {
	Valid       bool `json:"valid"`
	Sections    int  `json:"sections"`
	Constraints int  `json:"constraints"`
	Fixed       int  `json:"fixed"`
}

// errorResponse carries a structured error to API clients.
type errorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req shuffleRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := req.options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	reg, g, err := manuscript.Build(opts.Manuscript, opts.Rules)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := shuffle.Validate(reg, g); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:       true,
		Sections:    reg.Len(),
		Constraints: g.EdgeCount(),
		Fixed:       len(reg.Fixed()),
	})
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	var req shuffleRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.runShuffle(w, r, req.options())
}

func (s *Server) runShuffle(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shuffleResponse{
		Order:       result.Order,
		Permutation: result.Permutation,
		Output:      result.Output,
		Sections:    result.Stats.SectionCount,
		Constraints: result.Stats.EdgeCount,
		Fixed:       result.Stats.FixedCount,
		Seed:        result.Seed,
		Cached:      result.CacheInfo.ShuffleHit,
	})
}

// graphRequest is the body of POST /api/graph.
type graphRequest struct {
	shuffleRequest
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}

	data, err := s.runner.RenderGraph(r.Context(), req.options(), req.Format, req.Detailed)
	if err != nil {
		s.writeError(w, err)
		return
	}

	contentType := "image/svg+xml"
	if req.Format == pipeline.FormatDOT {
		contentType = "text/vnd.graphviz"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// workspaceRequest is the body of workspace create and update calls.
type workspaceRequest struct {
	Name       string           `json:"name"`
	Manuscript string           `json:"manuscript"`
	Rules      manuscript.Rules `json:"rules"`
}

func (s *Server) handleWorkspaceCreate(w http.ResponseWriter, r *http.Request) {
	var req workspaceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Manuscript == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "manuscript is required"))
		return
	}

	ws := session.NewWorkspace(req.Name, req.Manuscript, req.Rules)
	if err := s.store.Set(r.Context(), ws); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store workspace"))
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleWorkspaceList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list workspaces"))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"workspaces": ids})
}

func (s *Server) handleWorkspaceGet(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleWorkspaceUpdate(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	var req workspaceRequest
	if !s.decode(w, r, &req) {
		return
	}

	if req.Name != "" {
		ws.Name = req.Name
	}
	if req.Manuscript != "" {
		ws.Manuscript = req.Manuscript
	}
	ws.Rules = req.Rules
	ws.Touch(session.DefaultTTL)

	if err := s.store.Set(r.Context(), ws); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store workspace"))
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleWorkspaceDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "delete workspace"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// workspaceShuffleRequest is the body of POST /api/workspaces/{id}/shuffle.
// Only seed and refresh can vary per request; the text and rules come from
// the stored workspace.
type workspaceShuffleRequest struct {
	Seed    uint64 `json:"seed,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

func (s *Server) handleWorkspaceShuffle(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	var req workspaceShuffleRequest
	if !s.decode(w, r, &req) {
		return
	}

	// Scope cache keys to the workspace so an update to its manuscript or
	// rules cannot collide with another workspace's cached results.
	scoped := s.runner.Scoped("ws:" + ws.ID + ":")
	result, err := scoped.Execute(r.Context(), pipeline.Options{
		Manuscript: ws.Manuscript,
		Rules:      ws.Rules,
		Seed:       req.Seed,
		Refresh:    req.Refresh,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, shuffleResponse{
		Order:       result.Order,
		Permutation: result.Permutation,
		Output:      result.Output,
		Sections:    result.Stats.SectionCount,
		Constraints: result.Stats.EdgeCount,
		Fixed:       result.Stats.FixedCount,
		Seed:        result.Seed,
		Cached:      result.CacheInfo.ShuffleHit,
	})
}

// workspace loads the workspace named in the URL, writing a 404 on absence.
func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	id := chi.URLParam(r, "id")
	ws, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load workspace"))
		return nil, false
	}
	if ws == nil {
		s.writeError(w, errors.New(errors.ErrCodeWorkspaceNotFound, "workspace %q not found", id))
		return nil, false
	}
	return ws, true
}

// decode reads a JSON body, writing a 400 on malformed input. An empty body
// decodes to the zero value, which handlers validate themselves.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: apiError{
			Code:    errors.ErrCodeInvalidInput,
			Message: "malformed JSON body",
		}})
		return false
	}
	return true
}

// writeError maps structured error codes onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeUnknownSection,
		errors.ErrCodeSelfConstraint,
		errors.ErrCodeCycleDetected,
		errors.ErrCodeDuplicateFixedPosition,
		errors.ErrCodeFixedPositionOutOfRange,
		errors.ErrCodeFixedPositionConflict,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidDelimiter,
		errors.ErrCodeInvalidRules:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeWorkspaceNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
	}

	writeJSON(w, status, errorResponse{Error: apiError{
		Code:    code,
		Message: errors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
