package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sitecost/internal/errors"
)

// handleEstimate handles POST /estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entry := newAuditEntry(r)
	defer func() {
		entry.finish(start)
		s.audit.Log(entry)
	}()

	var req EstimateRequest
	if err := s.decode(w, r, &req); err != nil {
		entry.markFailed(err)
		s.writeError(w, err)
		return
	}

	report, err := s.service.Estimate(req.Request)
	if err != nil {
		entry.markFailed(err)
		s.writeError(w, err)
		return
	}
	entry.EstimateID = report.ID
	entry.InputHash = report.InputHash

	if req.Save {
		if !s.requireStore(w) {
			entry.Success = false
			entry.ErrorCode = codeStorageDisabled
			return
		}
		if err := s.store.Save(r.Context(), report); err != nil {
			entry.markFailed(err)
			s.writeError(w, err)
			return
		}
		entry.Saved = true
		w.Header().Set("Location", "/estimates/"+report.ID)
		s.writeJSON(w, report, http.StatusCreated)
		return
	}

	s.writeJSON(w, report, http.StatusOK)
}

// handleConvert handles POST /convert
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.From == "" {
		req.From = req.Result.Currency
	}
	if req.From == "" || req.To == "" {
		s.writeError(w, errors.Input("from and to currencies are required"))
		return
	}

	s.writeJSON(w, s.service.Convert(req.Result, req.From, req.To, req.Rates), http.StatusOK)
}

// handleTables handles GET /tables
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.service.Table().Summarize(), http.StatusOK)
}

// handleGetEstimate handles GET /estimates/{id}
func (s *Server) handleGetEstimate(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	report, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, report, http.StatusOK)
}

// handleListEstimates handles GET /estimates
func (s *Server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.InvalidNumeric("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	summaries, err := s.store.List(r.Context(), r.URL.Query().Get("inputHash"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"estimates": summaries,
		"count":     len(summaries),
	}, http.StatusOK)
}

const codeStorageDisabled = "STORAGE_DISABLED"

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store != nil {
		return true
	}
	s.writeJSON(w, ErrorResponse{Error: ErrorDetail{Code: codeStorageDisabled, Message: "estimate storage is not configured"}}, http.StatusServiceUnavailable)
	return false
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storage := "disabled"
	if s.store != nil {
		storage = "enabled"
	}
	s.writeJSON(w, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Storage: storage,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, VersionResponse{
		Version:          s.version,
		Engine:           "sitecost",
		APIVersion:       "v1",
		RateTableVersion: s.service.Table().Version(),
	}, http.StatusOK)
}
