// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vmunix/reqarr/internal/events"
	"github.com/vmunix/reqarr/internal/library"
	"github.com/vmunix/reqarr/internal/requests"
)

// Server is the v1 API server.
type Server struct {
	deps     ServerDeps
	registry *events.Registry
	logger   *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps, logger *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingDependency, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{deps: deps, registry: events.DefaultRegistry(), logger: logger}, nil
}

// Handler returns the API with authentication and access logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(s.authenticate(mux))
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Requests
	mux.HandleFunc("GET /api/v1/requests", s.listRequests)
	mux.HandleFunc("GET /api/v1/requests/count", s.countRequests)
	mux.HandleFunc("POST /api/v1/requests", s.createRequest)
	mux.HandleFunc("GET /api/v1/requests/{id}", s.getRequest)
	mux.HandleFunc("PUT /api/v1/requests/{id}", s.editRequest)
	mux.HandleFunc("DELETE /api/v1/requests/{id}", s.deleteRequest)
	mux.HandleFunc("POST /api/v1/requests/{id}/retry", s.retryRequest)
	mux.HandleFunc("POST /api/v1/requests/{id}/{status}", s.setRequestStatus)
	mux.HandleFunc("GET /api/v1/requests/{id}/events", s.requireEventLog(s.listRequestEvents))

	// Media
	mux.HandleFunc("GET /api/v1/media/{id}", s.getMedia)

	// System
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
	mux.HandleFunc("GET /api/v1/events", s.requireEventLog(s.listEvents))
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps request service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, requests.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, requests.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, requests.ErrInvalid):
		writeError(w, http.StatusBadRequest, "INVALID", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryInt64 extracts an optional int64 from query string.
func queryInt64(r *http.Request, name string) (*int64, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return &i, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	requestedBy, err := queryInt64(r, "requested_by")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	q := requests.ListQuery{
		Filter:      r.URL.Query().Get("filter"),
		Sort:        library.RequestSort(r.URL.Query().Get("sort")),
		Take:        queryInt(r, "take", requests.DefaultPageSize),
		Skip:        queryInt(r, "skip", 0),
		RequestedBy: requestedBy,
	}

	page, err := s.deps.Requests.List(r.Context(), userFrom(r.Context()), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := listRequestsResponse{
		PageInfo: pageInfo{
			Pages:    page.Pages,
			PageSize: page.PageSize,
			Results:  page.Total,
			Page:     page.Page,
		},
		Results: make([]requestResponse, len(page.Results)),
	}
	for i, req := range page.Results {
		resp.Results[i] = requestToResponse(req)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) countRequests(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Requests.Count(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	req, err := s.deps.Requests.Create(r.Context(), userFrom(r.Context()), requests.CreateInput{
		MediaType:         library.MediaType(body.MediaType),
		TMDBID:            body.MediaID,
		TVDBID:            body.TVDBID,
		Is4K:              body.Is4K,
		Seasons:           body.Seasons,
		ServerID:          body.ServerID,
		ProfileID:         body.ProfileID,
		RootFolder:        body.RootFolder,
		LanguageProfileID: body.LanguageProfileID,
		UserID:            body.UserID,
	})
	if errors.Is(err, requests.ErrNoSeasons) {
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "All seasons already requested"})
		return
	}
	s.writeRequest(w, http.StatusCreated, req, err)
}

// writeRequest writes req, or the error when no request came back. A dispatch
// error that accompanies a saved request is reported in the body.
func (s *Server) writeRequest(w http.ResponseWriter, code int, req *library.Request, err error) {
	if req == nil {
		writeServiceError(w, err)
		return
	}
	resp := requestToResponse(req)
	if err != nil {
		s.logger.Warn("request saved but dispatch failed", "request_id", req.ID, "error", err)
		resp.DispatchError = err.Error()
	}
	writeJSON(w, code, resp)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	req, err := s.deps.Requests.Get(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestToResponse(req))
}

func (s *Server) editRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	var body editRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	req, err := s.deps.Requests.Edit(r.Context(), userFrom(r.Context()), id, requests.EditInput{
		ServerID:          body.ServerID,
		ProfileID:         body.ProfileID,
		RootFolder:        body.RootFolder,
		LanguageProfileID: body.LanguageProfileID,
		UserID:            body.UserID,
		Seasons:           body.Seasons,
	})
	if errors.Is(err, requests.ErrNoSeasons) {
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "All seasons already requested"})
		return
	}
	s.writeRequest(w, http.StatusOK, req, err)
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	if err := s.deps.Requests.Delete(r.Context(), userFrom(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) retryRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	req, err := s.deps.Requests.Retry(r.Context(), userFrom(r.Context()), id)
	s.writeRequest(w, http.StatusOK, req, err)
}

// statusActions maps the action in POST /requests/{id}/{status} to a status.
var statusActions = map[string]library.RequestStatus{
	"pending": library.RequestStatusPending,
	"approve": library.RequestStatusApproved,
	"decline": library.RequestStatusDeclined,
}

func (s *Server) setRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	status, ok := statusActions[r.PathValue("status")]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown request action")
		return
	}
	req, err := s.deps.Requests.SetStatus(r.Context(), userFrom(r.Context()), id, status)
	s.writeRequest(w, http.StatusOK, req, err)
}

func (s *Server) getMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	m, err := s.deps.Media.GetMedia(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mediaToResponse(m))
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:  "ok",
		Version: s.deps.Version,
		User:    userFrom(r.Context()).Email,
	}
	if s.deps.Pool != nil {
		st := s.deps.Pool.Stats()
		resp.Dispatch = &st
	}
	if s.deps.Bus != nil {
		resp.EventsDropped = s.deps.Bus.Dropped()
	}
	writeJSON(w, http.StatusOK, resp)
}
