package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/autonomax/registryx/internal/registry"
	"github.com/autonomax/registryx/internal/rowstore"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var (
	errMissingParam = errors.New("missing query parameter")
	errInvalidBody  = errors.New("invalid request body")
	errInvalidParam = errors.New("invalid query parameter")
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

type patchRequest struct {
	ProjectID *string       `json:"project_id"`
	Updates   *rowstore.Row `json:"updates"`
}

func (s *Server) handleProjects(w http.ResponseWriter, _ *http.Request) {
	listing, err := s.registry.ListProjects()
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	row, err := s.registry.GetProject(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, row)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	var req patchRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	err := dec.Decode(&req)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errInvalidBody, err))

		return
	}

	if req.ProjectID == nil {
		s.writeError(w, fmt.Errorf("%w: project_id is required", errInvalidBody))

		return
	}

	if req.Updates == nil {
		s.writeError(w, fmt.Errorf("%w: updates is required", errInvalidBody))

		return
	}

	result, err := s.registry.PatchProject(*req.ProjectID, *req.Updates)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := s.registry.Summarize()
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleWBS(w http.ResponseWriter, r *http.Request) {
	id, err := requiredParam(r, "project_id")
	if err != nil {
		s.writeError(w, err)

		return
	}

	graph, err := s.registry.WBS(id)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handleBuildIndex(w http.ResponseWriter, _ *http.Request) {
	result, err := s.registry.RebuildIndex()
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Index())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", errInvalidParam))

			return
		}

		limit = n
	}

	s.writeJSON(w, http.StatusOK, s.registry.SearchIndex(r.URL.Query().Get("q"), limit))
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	id, err := requiredParam(r, "project_id")
	if err != nil {
		s.writeError(w, err)

		return
	}

	team, err := s.registry.Team(id)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, team)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requiredParam fails only when name is absent from the query; an empty
// value is passed through.
func requiredParam(r *http.Request, name string) (string, error) {
	query := r.URL.Query()
	if !query.Has(name) {
		return "", fmt.Errorf("%w: %s", errMissingParam, name)
	}

	return query.Get(name), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMissingParam),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errInvalidParam):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, errorBody{Detail: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(v)
	if err != nil {
		s.logger.Error("encoding response", zap.Error(err))
		http.Error(w, `{"detail":"internal error"}`, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
