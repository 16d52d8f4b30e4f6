package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/supplier-cli/internal/model"
)

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisId")

	// Ownership check: the supplier list is only visible through an
	// analysis the caller owns.
	if _, err := s.store.GetAnalysis(r.Context(), ownerID(r), analysisID); err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}

	suppliers, err := s.store.ListSuppliers(r.Context(), analysisID)
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	if suppliers == nil {
		suppliers = []model.Supplier{}
	}
	respondData(w, http.StatusOK, suppliers)
}

func (s *Server) handleSupplierStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.SupplierStats(r.Context(), ownerID(r))
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	respondData(w, http.StatusOK, stats)
}
