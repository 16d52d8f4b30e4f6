package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/supplier-cli/internal/analysis"
	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/store"
)

type createAnalysisRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if n := len([]rune(req.Title)); n < 3 || n > 100 {
		respondError(w, http.StatusBadRequest, "title must be between 3 and 100 characters")
		return
	}
	if len([]rune(req.Description)) > 500 {
		respondError(w, http.StatusBadRequest, "description must be at most 500 characters")
		return
	}

	a, err := s.store.CreateAnalysis(r.Context(), ownerID(r), req.Title, req.Description)
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	respondMessage(w, http.StatusCreated, "analysis created", a)
}

type paginatedAnalyses struct {
	Analyses   []model.Analysis `json:"analyses"`
	Pagination pagination       `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := store.AnalysisFilter{
		OwnerID: ownerID(r),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = model.AnalysisStatus(strings.ToUpper(status))
	}

	analyses, total, err := s.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	if analyses == nil {
		analyses = []model.Analysis{}
	}

	pages := (total + limit - 1) / limit
	respondData(w, http.StatusOK, paginatedAnalyses{
		Analyses:   analyses,
		Pagination: pagination{Page: page, Limit: limit, Total: total, Pages: pages},
	})
}

func (s *Server) handleAnalysisStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.AnalysisStats(r.Context(), ownerID(r))
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	respondData(w, http.StatusOK, stats)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAnalysis(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	respondData(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAnalysis(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	respondMessage(w, http.StatusOK, "analysis deleted", nil)
}

func (s *Server) handleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.Run(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrNoSuppliers):
		respondError(w, http.StatusBadRequest, "analysis has no suppliers; upload data first")
		return
	case errors.Is(err, analysis.ErrNoValidData):
		respondError(w, http.StatusBadRequest, "analysis has no valid supplier data")
		return
	default:
		respondStoreError(w, err, "analysis not found")
		return
	}

	message := "analysis complete"
	if result.Fallback {
		message = "analysis complete (local fallback, AI unavailable)"
	}
	if result.MessageErr != nil {
		message += "; message generation failed"
	}
	respondMessage(w, http.StatusOK, message, result)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
